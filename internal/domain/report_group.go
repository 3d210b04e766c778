package domain

// ReportGroup reports of one project, as shown in the reports manager
type ReportGroup struct {
	ProjectID   string          `json:"projectId"`
	ProjectCode string          `json:"projectCode"`
	ProjectName string          `json:"projectName"`
	Reports     []*StoredReport `json:"reports"`
}

// GroupByProject groups reports by project id keeping first-seen order of
// projects and the input order of reports inside each group.
func GroupByProject(reports []*StoredReport) []ReportGroup {
	groups := make([]ReportGroup, 0)
	index := map[string]int{}
	for _, r := range reports {
		if r == nil {
			continue
		}
		i, ok := index[r.ProjectID]
		if !ok {
			i = len(groups)
			index[r.ProjectID] = i
			groups = append(groups, ReportGroup{
				ProjectID:   r.ProjectID,
				ProjectCode: r.Project.ProjectCode,
				ProjectName: r.Project.ProjectName,
			})
		}
		groups[i].Reports = append(groups[i].Reports, r)
	}
	return groups
}
