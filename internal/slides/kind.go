package slides

import "pmp-reports/internal/domain"

// Kind slide type
type Kind string

const (
	KindCover          Kind = "cover"
	KindOverview       Kind = "overview"
	KindPlanning       Kind = "planning"
	KindQuality        Kind = "quality"
	KindRisks          Kind = "risks"
	KindAreaOfConcerns Kind = "areaOfConcerns"
	KindHSE            Kind = "hse"
	KindChecklist      Kind = "checklist"
	KindStaff          Kind = "staff"
	KindLabours        Kind = "labours"
	KindLabourSupply   Kind = "labourSupply"
	KindPlants         Kind = "plants"
	KindAssets         Kind = "assets"
	KindPictures       Kind = "pictures"
	KindCloseOut       Kind = "closeOut"
	KindClientFeedback Kind = "clientFeedback"
)

// Order deck order; Generate never emits slides in any other order
var Order = []Kind{
	KindCover,
	KindOverview,
	KindPlanning,
	KindQuality,
	KindRisks,
	KindAreaOfConcerns,
	KindHSE,
	KindChecklist,
	KindStaff,
	KindLabours,
	KindLabourSupply,
	KindPlants,
	KindAssets,
	KindPictures,
	KindCloseOut,
	KindClientFeedback,
}

var defaultTitles = map[Kind]string{
	KindCover:          "Monthly Progress Report",
	KindOverview:       "Project Overview",
	KindPlanning:       "Planning & Progress",
	KindQuality:        "Quality",
	KindRisks:          "Risks",
	KindAreaOfConcerns: "Areas of Concern",
	KindHSE:            "Health, Safety & Environment",
	KindChecklist:      "Checklist",
	KindStaff:          "Project Staff",
	KindLabours:        "Labour",
	KindLabourSupply:   "Labour Supply",
	KindPlants:         "Plant & Equipment",
	KindAssets:         "Assets",
	KindPictures:       "Site Pictures",
	KindCloseOut:       "Close Out",
	KindClientFeedback: "Client Feedback",
}

// DefaultTitle heading used for the kind
func (k Kind) DefaultTitle() string {
	return defaultTitles[k]
}

// Section snapshot section feeding the kind; false for cover and overview
func (k Kind) Section() (domain.SectionName, bool) {
	if k == KindCover || k == KindOverview {
		return "", false
	}
	s := domain.SectionName(k)
	return s, s.Valid()
}

// Position index of k in Order, -1 if unknown
func (k Kind) Position() int {
	for i, o := range Order {
		if o == k {
			return i
		}
	}
	return -1
}
