package slides

import (
	"encoding/json"

	"pmp-reports/internal/domain"
)

const notAvailable = "N/A"

const (
	designationProjectManager  = "Project Manager"
	designationProjectDirector = "Project Director"
)

type sectionBuilder func(raw json.RawMessage) (Slide, bool)

// sectionBuilders optional slides in deck order
var sectionBuilders = []struct {
	section domain.SectionName
	build   sectionBuilder
}{
	{domain.SectionPlanning, planningSlide},
	{domain.SectionQuality, qualitySlide},
	{domain.SectionRisks, risksSlide},
	{domain.SectionAreaOfConcerns, concernsSlide},
	{domain.SectionHSE, hseSlide},
	{domain.SectionChecklist, checklistSlide},
	{domain.SectionStaff, staffSlide},
	{domain.SectionLabours, laboursSlide},
	{domain.SectionLabourSupply, labourSupplySlide},
	{domain.SectionPlants, plantsSlide},
	{domain.SectionAssets, assetsSlide},
	{domain.SectionPictures, picturesSlide},
	{domain.SectionCloseOut, closeOutSlide},
	{domain.SectionClientFeedback, clientFeedbackSlide},
}

// Generate derives the deck for a snapshot: cover and overview always, then one
// slide per section that is present (or non-empty for list sections). Items that
// cannot be decoded are left out of their slide; the slide itself stays.
// It does not modify snap and always returns the same deck for the same input.
func Generate(snap *domain.ReportSnapshot, period domain.Period) []Slide {
	if snap == nil {
		snap = &domain.ReportSnapshot{}
	}

	deck := make([]Slide, 0, len(Order))
	deck = append(deck, coverSlide(snap, period), overviewSlide(snap, period))
	for _, b := range sectionBuilders {
		if s, ok := b.build(snap.Section(b.section)); ok {
			deck = append(deck, s)
		}
	}
	return deck
}

func coverSlide(snap *domain.ReportSnapshot, period domain.Period) *CoverSlide {
	title := snap.Project.ProjectName
	if title == "" {
		title = KindCover.DefaultTitle()
	}
	s := &CoverSlide{
		header:              header{Heading: title},
		ProjectName:         snap.Project.ProjectName,
		ProjectCode:         snap.Project.ProjectCode,
		Period:              period.Label(),
		FeaturedPicture:     FeaturedPicture(sitePictures(snap.Pictures)),
		ProjectManagerName:  notAvailable,
		ProjectDirectorName: notAvailable,
		GeneratedAt:         snap.GeneratedAt,
	}
	if snap.Project.Client != nil {
		s.ClientName = snap.Project.Client.Name
	}

	designations := decodeList[StaffDesignation](snap.Staff)
	if name := assignedName(designations, designationProjectManager); name != "" {
		s.ProjectManagerName = name
	}
	if name := assignedName(designations, designationProjectDirector); name != "" {
		s.ProjectDirectorName = name
	}
	return s
}

// FeaturedPicture first picture flagged featured, else the first picture, else nil
func FeaturedPicture(pictures []Picture) *Picture {
	for i := range pictures {
		if pictures[i].IsFeatured {
			p := pictures[i]
			return &p
		}
	}
	if len(pictures) > 0 {
		p := pictures[0]
		return &p
	}
	return nil
}

// assignedName first named staff member among the matching designations
func assignedName(designations []StaffDesignation, designation string) string {
	for _, d := range designations {
		if string(d.Designation) != designation {
			continue
		}
		for _, m := range d.Staff {
			if m.Name != "" {
				return string(m.Name)
			}
		}
	}
	return ""
}

// sitePictures the pictures list: nested under "pictures" or a bare array
func sitePictures(raw json.RawMessage) []Picture {
	return decodeList[Picture](raw, "pictures")
}

func overviewSlide(snap *domain.ReportSnapshot, period domain.Period) *OverviewSlide {
	contacts := append([]domain.ProjectContact{}, snap.Contacts...)
	project := snap.Project
	project.Consultants = append([]domain.Consultant(nil), snap.Project.Consultants...)
	return &OverviewSlide{
		header:   header{Heading: KindOverview.DefaultTitle()},
		Project:  project,
		Contacts: contacts,
		Period:   period.Label(),
	}
}

func planningSlide(raw json.RawMessage) (Slide, bool) {
	if !isTruthy(raw) {
		return nil, false
	}
	milestones := decodeList[Milestone](raw, "milestones", "items")
	return &PlanningSlide{
		header:     header{Heading: KindPlanning.DefaultTitle()},
		Summary:    summaryFields(raw),
		Milestones: milestones,
	}, true
}

func qualitySlide(raw json.RawMessage) (Slide, bool) {
	if !isTruthy(raw) {
		return nil, false
	}
	items := decodeList[QualityItem](raw, "items", "inspections", "ncrs")
	return &QualitySlide{
		header:  header{Heading: KindQuality.DefaultTitle()},
		Summary: summaryFields(raw),
		Items:   items,
	}, true
}

func risksSlide(raw json.RawMessage) (Slide, bool) {
	if !isTruthy(raw) {
		return nil, false
	}
	risks := decodeList[Risk](raw, "risks", "items")
	return &RisksSlide{
		header:  header{Heading: KindRisks.DefaultTitle()},
		Summary: summaryFields(raw),
		Risks:   risks,
	}, true
}

func concernsSlide(raw json.RawMessage) (Slide, bool) {
	if !isTruthy(raw) {
		return nil, false
	}
	concerns := decodeList[Concern](raw, "concerns", "areaOfConcerns", "items")
	return &AreaOfConcernsSlide{
		header:   header{Heading: KindAreaOfConcerns.DefaultTitle()},
		Summary:  summaryFields(raw),
		Concerns: concerns,
	}, true
}

func hseSlide(raw json.RawMessage) (Slide, bool) {
	if !isTruthy(raw) {
		return nil, false
	}
	incidents := decodeList[Incident](raw, "incidents", "items")
	return &HSESlide{
		header:    header{Heading: KindHSE.DefaultTitle()},
		Summary:   summaryFields(raw),
		Incidents: incidents,
	}, true
}

func clientFeedbackSlide(raw json.RawMessage) (Slide, bool) {
	if !isTruthy(raw) {
		return nil, false
	}
	entries := decodeList[Feedback](raw, "feedback", "entries", "items")
	return &ClientFeedbackSlide{
		header:  header{Heading: KindClientFeedback.DefaultTitle()},
		Summary: summaryFields(raw),
		Entries: entries,
	}, true
}

// nonEmptyList reports whether raw is a JSON array with at least one element
// and returns the elements that decode as T, possibly none.
func nonEmptyList[T any](raw json.RawMessage) ([]T, bool) {
	if arrayLen(raw) < 1 {
		return nil, false
	}
	return decodeList[T](raw), true
}

func checklistSlide(raw json.RawMessage) (Slide, bool) {
	items, ok := nonEmptyList[ChecklistItem](raw)
	if !ok {
		return nil, false
	}
	return &ChecklistSlide{header: header{Heading: KindChecklist.DefaultTitle()}, Items: items}, true
}

func staffSlide(raw json.RawMessage) (Slide, bool) {
	designations, ok := nonEmptyList[StaffDesignation](raw)
	if !ok {
		return nil, false
	}
	return &StaffSlide{header: header{Heading: KindStaff.DefaultTitle()}, Designations: designations}, true
}

func laboursSlide(raw json.RawMessage) (Slide, bool) {
	labours, ok := nonEmptyList[Labour](raw)
	if !ok {
		return nil, false
	}
	return &LaboursSlide{header: header{Heading: KindLabours.DefaultTitle()}, Labours: labours}, true
}

func labourSupplySlide(raw json.RawMessage) (Slide, bool) {
	entries, ok := nonEmptyList[LabourSupply](raw)
	if !ok {
		return nil, false
	}
	return &LabourSupplySlide{header: header{Heading: KindLabourSupply.DefaultTitle()}, Entries: entries}, true
}

func plantsSlide(raw json.RawMessage) (Slide, bool) {
	plants, ok := nonEmptyList[Plant](raw)
	if !ok {
		return nil, false
	}
	return &PlantsSlide{header: header{Heading: KindPlants.DefaultTitle()}, Plants: plants}, true
}

func assetsSlide(raw json.RawMessage) (Slide, bool) {
	assets, ok := nonEmptyList[Asset](raw)
	if !ok {
		return nil, false
	}
	return &AssetsSlide{header: header{Heading: KindAssets.DefaultTitle()}, Assets: assets}, true
}

// picturesSlide emitted when the nested picture list (or a bare list) is non-empty
func picturesSlide(raw json.RawMessage) (Slide, bool) {
	if len(listElements(raw, "pictures")) == 0 {
		return nil, false
	}
	pictures := sitePictures(raw)
	return &PicturesSlide{header: header{Heading: KindPictures.DefaultTitle()}, Pictures: pictures}, true
}

func closeOutSlide(raw json.RawMessage) (Slide, bool) {
	items, ok := nonEmptyList[CloseOutItem](raw)
	if !ok {
		return nil, false
	}
	return &CloseOutSlide{header: header{Heading: KindCloseOut.DefaultTitle()}, Items: items}, true
}
