package slides

import (
	"time"

	"pmp-reports/internal/domain"
)

// Slide one render-ready page of a report deck.
// The set of implementations is closed: the 16 types below.
type Slide interface {
	Kind() Kind
	Title() string
	isSlide()
}

type header struct {
	Heading string `json:"title"`
}

func (h header) Title() string { return h.Heading }
func (header) isSlide()        {}

// CoverSlide hero image, project title, manager/director footer
type CoverSlide struct {
	header
	ProjectName         string    `json:"projectName"`
	ProjectCode         string    `json:"projectCode"`
	ClientName          string    `json:"clientName,omitempty"`
	Period              string    `json:"period"`
	FeaturedPicture     *Picture  `json:"featuredPicture,omitempty"`
	ProjectManagerName  string    `json:"projectManagerName"`
	ProjectDirectorName string    `json:"projectDirectorName"`
	GeneratedAt         time.Time `json:"generatedAt"`
}

// OverviewSlide project identity and contacts
type OverviewSlide struct {
	header
	Project  domain.Project          `json:"project"`
	Contacts []domain.ProjectContact `json:"contacts"`
	Period   string                  `json:"period"`
}

type PlanningSlide struct {
	header
	Summary    []Field     `json:"summary,omitempty"`
	Milestones []Milestone `json:"milestones,omitempty"`
}

type QualitySlide struct {
	header
	Summary []Field       `json:"summary,omitempty"`
	Items   []QualityItem `json:"items,omitempty"`
}

type RisksSlide struct {
	header
	Summary []Field `json:"summary,omitempty"`
	Risks   []Risk  `json:"risks"`
}

type AreaOfConcernsSlide struct {
	header
	Summary  []Field   `json:"summary,omitempty"`
	Concerns []Concern `json:"concerns"`
}

type HSESlide struct {
	header
	Summary   []Field    `json:"summary,omitempty"`
	Incidents []Incident `json:"incidents,omitempty"`
}

type ChecklistSlide struct {
	header
	Items []ChecklistItem `json:"items"`
}

type StaffSlide struct {
	header
	Designations []StaffDesignation `json:"designations"`
}

type LaboursSlide struct {
	header
	Labours []Labour `json:"labours"`
}

type LabourSupplySlide struct {
	header
	Entries []LabourSupply `json:"entries"`
}

type PlantsSlide struct {
	header
	Plants []Plant `json:"plants"`
}

type AssetsSlide struct {
	header
	Assets []Asset `json:"assets"`
}

type PicturesSlide struct {
	header
	Pictures []Picture `json:"pictures"`
}

type CloseOutSlide struct {
	header
	Items []CloseOutItem `json:"items"`
}

type ClientFeedbackSlide struct {
	header
	Summary []Field    `json:"summary,omitempty"`
	Entries []Feedback `json:"entries,omitempty"`
}

func (CoverSlide) Kind() Kind          { return KindCover }
func (OverviewSlide) Kind() Kind       { return KindOverview }
func (PlanningSlide) Kind() Kind       { return KindPlanning }
func (QualitySlide) Kind() Kind        { return KindQuality }
func (RisksSlide) Kind() Kind          { return KindRisks }
func (AreaOfConcernsSlide) Kind() Kind { return KindAreaOfConcerns }
func (HSESlide) Kind() Kind            { return KindHSE }
func (ChecklistSlide) Kind() Kind      { return KindChecklist }
func (StaffSlide) Kind() Kind          { return KindStaff }
func (LaboursSlide) Kind() Kind        { return KindLabours }
func (LabourSupplySlide) Kind() Kind   { return KindLabourSupply }
func (PlantsSlide) Kind() Kind         { return KindPlants }
func (AssetsSlide) Kind() Kind         { return KindAssets }
func (PicturesSlide) Kind() Kind       { return KindPictures }
func (CloseOutSlide) Kind() Kind       { return KindCloseOut }
func (ClientFeedbackSlide) Kind() Kind { return KindClientFeedback }

// Kinds kinds of a deck, in deck order
func Kinds(deck []Slide) []Kind {
	out := make([]Kind, len(deck))
	for i, s := range deck {
		out[i] = s.Kind()
	}
	return out
}
