package domain

// SectionName key of one domain area inside a report snapshot
type SectionName string

const (
	SectionPlanning       SectionName = "planning"
	SectionQuality        SectionName = "quality"
	SectionRisks          SectionName = "risks"
	SectionAreaOfConcerns SectionName = "areaOfConcerns"
	SectionHSE            SectionName = "hse"
	SectionChecklist      SectionName = "checklist"
	SectionStaff          SectionName = "staff"
	SectionLabours        SectionName = "labours"
	SectionLabourSupply   SectionName = "labourSupply"
	SectionPlants         SectionName = "plants"
	SectionAssets         SectionName = "assets"
	SectionPictures       SectionName = "pictures"
	SectionCloseOut       SectionName = "closeOut"
	SectionClientFeedback SectionName = "clientFeedback"
)

// AllSections in snapshot/document order
var AllSections = []SectionName{
	SectionPlanning,
	SectionQuality,
	SectionRisks,
	SectionAreaOfConcerns,
	SectionHSE,
	SectionChecklist,
	SectionStaff,
	SectionLabours,
	SectionLabourSupply,
	SectionPlants,
	SectionAssets,
	SectionPictures,
	SectionCloseOut,
	SectionClientFeedback,
}

var sectionPaths = map[SectionName]string{
	SectionPlanning:       "planning",
	SectionQuality:        "quality",
	SectionRisks:          "risks",
	SectionAreaOfConcerns: "area-of-concerns",
	SectionHSE:            "hse",
	SectionChecklist:      "checklist",
	SectionStaff:          "staff",
	SectionLabours:        "labours",
	SectionLabourSupply:   "labour-supply",
	SectionPlants:         "plants",
	SectionAssets:         "assets",
	SectionPictures:       "pictures",
	SectionCloseOut:       "close-out",
	SectionClientFeedback: "client-feedback",
}

// PathSegment URL segment of the upstream sub-resource
func (s SectionName) PathSegment() string {
	return sectionPaths[s]
}

// Valid reports whether s is one of AllSections
func (s SectionName) Valid() bool {
	_, ok := sectionPaths[s]
	return ok
}

// SectionStatus outcome of fetching one section
type SectionStatus string

const (
	SectionPresent SectionStatus = "present"
	SectionAbsent  SectionStatus = "absent"
	SectionFailed  SectionStatus = "failed"
)

// SectionOutcome explicit per-section result folded into a snapshot
type SectionOutcome struct {
	Section    SectionName   `json:"section"`
	Status     SectionStatus `json:"status"`
	Error      string        `json:"error,omitempty"`
	DurationMS int64         `json:"durationMs"`
}
