package slides

import (
	"encoding/json"
	"testing"
	"time"

	"pmp-reports/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPeriod = domain.Period{Month: 3, Year: 2025}

// slideOpts lets cmp look through the embedded slide header
var slideOpts = cmp.AllowUnexported(
	CoverSlide{}, OverviewSlide{}, PlanningSlide{}, QualitySlide{},
	RisksSlide{}, AreaOfConcernsSlide{}, HSESlide{}, ChecklistSlide{},
	StaffSlide{}, LaboursSlide{}, LabourSupplySlide{}, PlantsSlide{},
	AssetsSlide{}, PicturesSlide{}, CloseOutSlide{}, ClientFeedbackSlide{},
)

func towerA() *domain.ReportSnapshot {
	return &domain.ReportSnapshot{
		Project: domain.Project{
			ProjectID:   "p-1",
			ProjectCode: "PRJ-001",
			ProjectName: "Tower A",
			Client:      &domain.PartyRef{ID: "c-1", Name: "Acme Holdings"},
		},
		Contacts:    []domain.ProjectContact{{ID: "pc-1", Name: "Omar Said", IsPrimary: true}},
		GeneratedAt: time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC),
	}
}

// fullSnapshot every section populated
func fullSnapshot() *domain.ReportSnapshot {
	s := towerA()
	set := func(name domain.SectionName, raw string) { s.SetSection(name, json.RawMessage(raw)) }
	set(domain.SectionPlanning, `{"plannedProgress":45,"actualProgress":41.5,"milestones":[{"milestone":"Podium slab","plannedDate":"2025-03-15","status":"Completed"}]}`)
	set(domain.SectionQuality, `{"openNcrs":2,"items":[{"item":"Rebar inspection L3","status":"Pass"}]}`)
	set(domain.SectionRisks, `[{"riskItem":"Flooding","impact":"High","remarks":"Drainage plan pending"}]`)
	set(domain.SectionAreaOfConcerns, `[{"concern":"Late shop drawings","priority":"Medium"}]`)
	set(domain.SectionHSE, `{"manHours":12000,"lostTimeInjuries":0,"incidents":[{"incident":"Near miss at hoist","severity":"Low"}]}`)
	set(domain.SectionChecklist, `[{"item":"Monthly safety audit","completed":true}]`)
	set(domain.SectionStaff, `[{"designation":"Project Manager","staff":[{"name":"Jane Doe"}]},{"designation":"Project Director","staff":[{"name":"Sam Lee"},{"name":"Backup"}]}]`)
	set(domain.SectionLabours, `[{"trade":"Mason","planned":40,"actual":36}]`)
	set(domain.SectionLabourSupply, `[{"supplier":"BuildForce","trade":"Carpenter","quantity":12}]`)
	set(domain.SectionPlants, `[{"name":"Tower crane","quantity":1,"status":"Operational"}]`)
	set(domain.SectionAssets, `[{"name":"Site office","category":"Temporary works"}]`)
	set(domain.SectionPictures, `{"pictures":[{"id":"pic-1","url":"https://cdn.example.com/1.jpg"},{"id":"pic-2","url":"https://cdn.example.com/2.jpg","isFeatured":true}]}`)
	set(domain.SectionCloseOut, `[{"item":"As-built drawings","status":"Open"}]`)
	set(domain.SectionClientFeedback, `{"rating":4,"comment":"Good progress"}`)
	return s
}

func TestGenerate_EndToEndScenario(t *testing.T) {
	snap := &domain.ReportSnapshot{
		Project: domain.Project{ProjectID: "p-1", ProjectName: "Tower A", ProjectCode: "PRJ-001"},
		Risks:   json.RawMessage(`[{"riskItem":"Flooding","impact":"High","remarks":"Drainage plan pending"}]`),
	}

	deck := Generate(snap, testPeriod)

	if diff := cmp.Diff([]Kind{KindCover, KindOverview, KindRisks}, Kinds(deck)); diff != "" {
		t.Fatalf("deck kinds mismatch (-want +got):\n%s", diff)
	}
	risks, ok := deck[2].(*RisksSlide)
	require.True(t, ok)
	require.Len(t, risks.Risks, 1)
	assert.Equal(t, Text("Flooding"), risks.Risks[0].RiskItem)
	assert.Equal(t, Text("High"), risks.Risks[0].Impact)
	assert.Equal(t, Text("Drainage plan pending"), risks.Risks[0].Remarks)
}

func TestGenerate_FullDeckOrder(t *testing.T) {
	deck := Generate(fullSnapshot(), testPeriod)

	if diff := cmp.Diff(Order, Kinds(deck)); diff != "" {
		t.Fatalf("deck order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Tower A", deck[0].Title())
	assert.Equal(t, "Project Overview", deck[1].Title())
}

func TestGenerate_SectionOmission(t *testing.T) {
	full := Generate(fullSnapshot(), testPeriod)

	for _, section := range domain.AllSections {
		section := section
		t.Run(string(section), func(t *testing.T) {
			snap := fullSnapshot()
			snap.SetSection(section, nil)
			deck := Generate(snap, testPeriod)

			assert.NotContains(t, Kinds(deck), Kind(section))
			assert.Len(t, deck, len(full)-1)

			// every other slide is unchanged, cover excepted for staff/pictures
			others := make([]Slide, 0, len(full)-1)
			for _, s := range full {
				if s.Kind() != Kind(section) {
					others = append(others, s)
				}
			}
			for i := range others {
				if others[i].Kind() == KindCover &&
					(section == domain.SectionStaff || section == domain.SectionPictures) {
					continue
				}
				if diff := cmp.Diff(others[i], deck[i], slideOpts); diff != "" {
					t.Errorf("slide %s changed (-want +got):\n%s", others[i].Kind(), diff)
				}
			}
		})
	}
}

func TestGenerate_IsIdempotent(t *testing.T) {
	snap := fullSnapshot()
	before, err := json.Marshal(snap)
	require.NoError(t, err)

	first := Generate(snap, testPeriod)
	second := Generate(snap, testPeriod)

	if diff := cmp.Diff(first, second, slideOpts); diff != "" {
		t.Fatalf("decks differ (-first +second):\n%s", diff)
	}
	after, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestGenerate_PresenceRules(t *testing.T) {
	cases := []struct {
		name    string
		section domain.SectionName
		raw     string
		want    bool
	}{
		{"planning object", domain.SectionPlanning, `{"actualProgress":10}`, true},
		{"planning false", domain.SectionPlanning, `false`, false},
		{"risks empty list is present", domain.SectionRisks, `[]`, true},
		{"risks free text", domain.SectionRisks, `"see attachment"`, true},
		{"checklist empty list", domain.SectionChecklist, `[]`, false},
		{"checklist object", domain.SectionChecklist, `{"items":[{"item":"x"}]}`, false},
		{"checklist non-empty", domain.SectionChecklist, `[{"item":"x"}]`, true},
		{"staff only bad elements", domain.SectionStaff, `[42]`, true},
		{"pictures nested non-empty", domain.SectionPictures, `{"pictures":[{"url":"a.jpg"}]}`, true},
		{"pictures nested empty", domain.SectionPictures, `{"pictures":[]}`, false},
		{"pictures string", domain.SectionPictures, `"none this month"`, false},
		{"pictures object without list", domain.SectionPictures, `{"count":3}`, false},
		{"pictures bare list", domain.SectionPictures, `[{"url":"a.jpg"}]`, true},
		{"feedback string", domain.SectionClientFeedback, `"Very satisfied"`, true},
		{"feedback list", domain.SectionClientFeedback, `[{"comment":"ok"}]`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := towerA()
			snap.SetSection(tc.section, json.RawMessage(tc.raw))
			kinds := Kinds(Generate(snap, testPeriod))
			if tc.want {
				assert.Contains(t, kinds, Kind(tc.section))
			} else {
				assert.NotContains(t, kinds, Kind(tc.section))
			}
			assert.Equal(t, []Kind{KindCover, KindOverview}, kinds[:2])
		})
	}
}

func TestGenerate_CoverFeaturedPicture(t *testing.T) {
	featuredSecond := fullSnapshot()
	cover := Generate(featuredSecond, testPeriod)[0].(*CoverSlide)
	require.NotNil(t, cover.FeaturedPicture)
	assert.Equal(t, Text("pic-2"), cover.FeaturedPicture.ID)

	noneFlagged := towerA()
	noneFlagged.SetSection(domain.SectionPictures,
		json.RawMessage(`{"pictures":[{"id":"pic-1","url":"a.jpg"},{"id":"pic-2","url":"b.jpg"}]}`))
	cover = Generate(noneFlagged, testPeriod)[0].(*CoverSlide)
	require.NotNil(t, cover.FeaturedPicture)
	assert.Equal(t, Text("pic-1"), cover.FeaturedPicture.ID)

	noPictures := towerA()
	cover = Generate(noPictures, testPeriod)[0].(*CoverSlide)
	assert.Nil(t, cover.FeaturedPicture)
}

func TestGenerate_CoverStaffNames(t *testing.T) {
	cover := Generate(fullSnapshot(), testPeriod)[0].(*CoverSlide)
	assert.Equal(t, "Jane Doe", cover.ProjectManagerName)
	assert.Equal(t, "Sam Lee", cover.ProjectDirectorName)

	cases := map[string]string{
		"no section":        ``,
		"no designation":    `[{"designation":"Site Engineer","staff":[{"name":"Ali"}]}]`,
		"no assignment":     `[{"designation":"Project Manager","staff":[]}]`,
		"case differs":      `[{"designation":"project manager","staff":[{"name":"Jane Doe"}]}]`,
		"undecodable staff": `{"designation":"Project Manager"}`,
		"only bad members":  `[{"designation":"Project Manager","staff":[null,7]}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			snap := towerA()
			snap.SetSection(domain.SectionStaff, json.RawMessage(raw))
			cover := Generate(snap, testPeriod)[0].(*CoverSlide)
			assert.Equal(t, "N/A", cover.ProjectManagerName)
			assert.Equal(t, "N/A", cover.ProjectDirectorName)
		})
	}
}

func TestGenerate_MixedListsKeepGoodItems(t *testing.T) {
	snap := towerA()
	snap.SetSection(domain.SectionRisks, json.RawMessage(`[{"riskItem":"Flooding","impact":"High"},null,"tbd"]`))
	snap.SetSection(domain.SectionStaff, json.RawMessage(
		`[{"designation":"Project Manager","staff":[null,{"name":"Jane Doe"}]},"vacant",{"designation":"Project Director","staff":["Sam Lee"]}]`))
	snap.SetSection(domain.SectionClientFeedback, json.RawMessage(`"Very satisfied with progress"`))

	deck := Generate(snap, testPeriod)
	assert.Equal(t, []Kind{KindCover, KindOverview, KindRisks, KindStaff, KindClientFeedback}, Kinds(deck))

	cover := deck[0].(*CoverSlide)
	assert.Equal(t, "Jane Doe", cover.ProjectManagerName)
	assert.Equal(t, "Sam Lee", cover.ProjectDirectorName)

	risks := deck[2].(*RisksSlide)
	require.Len(t, risks.Risks, 1)
	assert.Equal(t, Text("Flooding"), risks.Risks[0].RiskItem)

	staff := deck[3].(*StaffSlide)
	require.Len(t, staff.Designations, 2)
	assert.Equal(t, []StaffMember{{Name: "Jane Doe"}}, staff.Designations[0].Staff)

	feedback := deck[4].(*ClientFeedbackSlide)
	assert.Empty(t, feedback.Entries)
	assert.Equal(t, []Field{{Key: "notes", Label: "Notes", Value: "Very satisfied with progress"}}, feedback.Summary)
}

func TestGenerate_ListSectionWithNoDecodableItems(t *testing.T) {
	snap := towerA()
	snap.SetSection(domain.SectionPlants, json.RawMessage(`[null, 3]`))

	deck := Generate(snap, testPeriod)
	require.Equal(t, []Kind{KindCover, KindOverview, KindPlants}, Kinds(deck))
	assert.Empty(t, deck[2].(*PlantsSlide).Plants)
}

func TestGenerate_CoverAndOverviewContent(t *testing.T) {
	deck := Generate(towerA(), testPeriod)

	cover := deck[0].(*CoverSlide)
	assert.Equal(t, "PRJ-001", cover.ProjectCode)
	assert.Equal(t, "Acme Holdings", cover.ClientName)
	assert.Equal(t, "March 2025", cover.Period)

	overview := deck[1].(*OverviewSlide)
	assert.Equal(t, "Tower A", overview.Project.ProjectName)
	require.Len(t, overview.Contacts, 1)
	assert.Equal(t, "Omar Said", overview.Contacts[0].Name)
}

func TestGenerate_NilSnapshot(t *testing.T) {
	deck := Generate(nil, testPeriod)
	assert.Equal(t, []Kind{KindCover, KindOverview}, Kinds(deck))
	assert.Equal(t, "Monthly Progress Report", deck[0].Title())
}

func TestGenerate_SummaryFieldsKeepSourceOrder(t *testing.T) {
	snap := towerA()
	snap.SetSection(domain.SectionHSE, json.RawMessage(`{"id":"x","manHours":12000,"lostTimeInjuries":0,"toolboxTalks":"8","safe":true,"incidents":[]}`))

	hse := Generate(snap, testPeriod)[2].(*HSESlide)
	want := []Field{
		{Key: "manHours", Label: "Man Hours", Value: "12000"},
		{Key: "lostTimeInjuries", Label: "Lost Time Injuries", Value: "0"},
		{Key: "toolboxTalks", Label: "Toolbox Talks", Value: "8"},
		{Key: "safe", Label: "Safe", Value: "true"},
	}
	if diff := cmp.Diff(want, hse.Summary); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestTolerantValues(t *testing.T) {
	var item ChecklistItem
	require.NoError(t, json.Unmarshal([]byte(`{"title":{"name":"Permit renewal"},"isCompleted":"yes"}`), &item))
	assert.Equal(t, Text("Permit renewal"), item.Item)
	assert.True(t, bool(item.Completed))
	assert.Equal(t, Text("Completed"), item.Status)

	var labour Labour
	require.NoError(t, json.Unmarshal([]byte(`{"category":"Steel fixer","count":7,"remarks":["night shift","weekend"]}`), &labour))
	assert.Equal(t, Text("Steel fixer"), labour.Trade)
	assert.Equal(t, Text("7"), labour.Actual)
	assert.Equal(t, Text("night shift, weekend"), labour.Remarks)

	assert.Equal(t, "Lost Time Injuries", Humanize("lostTimeInjuries"))
	assert.Equal(t, "Open NCR Count", Humanize("openNCRCount"))
	assert.Equal(t, "Man Hours", Humanize("man_hours"))
}
