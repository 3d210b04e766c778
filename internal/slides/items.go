package slides

import "bytes"

// Section item shapes. Every item accepts the alternative key spellings
// used across the panel's sub-resources; unknown keys are ignored.

// Milestone planning milestone
type Milestone struct {
	Name         Text `json:"name"`
	PlannedDate  Text `json:"plannedDate"`
	ForecastDate Text `json:"forecastDate"`
	ActualDate   Text `json:"actualDate"`
	Status       Text `json:"status"`
	Remarks      Text `json:"remarks"`
}

func (m *Milestone) UnmarshalJSON(b []byte) error {
	o, err := object(b)
	if err != nil {
		return err
	}
	*m = Milestone{
		Name:         pick(o, "milestone", "name", "title", "activity", "description"),
		PlannedDate:  pick(o, "plannedDate", "baselineDate", "plannedFinish"),
		ForecastDate: pick(o, "forecastDate", "forecastFinish"),
		ActualDate:   pick(o, "actualDate", "completedDate", "actualFinish"),
		Status:       pick(o, "status"),
		Remarks:      pick(o, "remarks", "comments", "notes"),
	}
	return nil
}

// QualityItem inspection, NCR or test record
type QualityItem struct {
	Title    Text `json:"title"`
	Category Text `json:"category"`
	Date     Text `json:"date"`
	Status   Text `json:"status"`
	Remarks  Text `json:"remarks"`
}

func (q *QualityItem) UnmarshalJSON(b []byte) error {
	o, err := object(b)
	if err != nil {
		return err
	}
	*q = QualityItem{
		Title:    pick(o, "item", "title", "inspection", "description", "reference"),
		Category: pick(o, "category", "type"),
		Date:     pick(o, "date", "inspectionDate"),
		Status:   pick(o, "status", "result"),
		Remarks:  pick(o, "remarks", "comments", "notes"),
	}
	return nil
}

// Risk risk register entry
type Risk struct {
	RiskItem   Text `json:"riskItem"`
	Impact     Text `json:"impact"`
	Likelihood Text `json:"likelihood"`
	Owner      Text `json:"owner"`
	Mitigation Text `json:"mitigation"`
	Status     Text `json:"status"`
	Remarks    Text `json:"remarks"`
}

func (r *Risk) UnmarshalJSON(b []byte) error {
	o, err := object(b)
	if err != nil {
		return err
	}
	*r = Risk{
		RiskItem:   pick(o, "riskItem", "risk", "title", "description"),
		Impact:     pick(o, "impact", "severity", "rating"),
		Likelihood: pick(o, "likelihood", "probability"),
		Owner:      pick(o, "owner", "responsible", "responsibleParty"),
		Mitigation: pick(o, "mitigation", "mitigationPlan", "action"),
		Status:     pick(o, "status"),
		Remarks:    pick(o, "remarks", "comments", "notes"),
	}
	return nil
}

// Concern area-of-concern entry
type Concern struct {
	Concern        Text `json:"concern"`
	Area           Text `json:"area"`
	Priority       Text `json:"priority"`
	ActionRequired Text `json:"actionRequired"`
	Responsible    Text `json:"responsible"`
	DueDate        Text `json:"dueDate"`
	Status         Text `json:"status"`
	Remarks        Text `json:"remarks"`
}

func (c *Concern) UnmarshalJSON(b []byte) error {
	o, err := object(b)
	if err != nil {
		return err
	}
	*c = Concern{
		Concern:        pick(o, "concern", "areaOfConcern", "issue", "title", "description"),
		Area:           pick(o, "area", "location"),
		Priority:       pick(o, "priority", "severity", "impact"),
		ActionRequired: pick(o, "actionRequired", "action"),
		Responsible:    pick(o, "responsibleParty", "responsible", "owner"),
		DueDate:        pick(o, "dueDate", "targetDate"),
		Status:         pick(o, "status"),
		Remarks:        pick(o, "remarks", "comments", "notes"),
	}
	return nil
}

// Incident HSE incident or observation
type Incident struct {
	Title    Text `json:"title"`
	Date     Text `json:"date"`
	Severity Text `json:"severity"`
	Status   Text `json:"status"`
	Remarks  Text `json:"remarks"`
}

func (i *Incident) UnmarshalJSON(b []byte) error {
	o, err := object(b)
	if err != nil {
		return err
	}
	*i = Incident{
		Title:    pick(o, "incident", "title", "type", "description"),
		Date:     pick(o, "date", "incidentDate"),
		Severity: pick(o, "severity", "classification"),
		Status:   pick(o, "status"),
		Remarks:  pick(o, "remarks", "comments", "notes"),
	}
	return nil
}

// ChecklistItem monthly checklist line
type ChecklistItem struct {
	Item      Text `json:"item"`
	Category  Text `json:"category"`
	Status    Text `json:"status"`
	Completed Flag `json:"completed"`
	Remarks   Text `json:"remarks"`
}

func (c *ChecklistItem) UnmarshalJSON(b []byte) error {
	o, err := object(b)
	if err != nil {
		return err
	}
	*c = ChecklistItem{
		Item:     pick(o, "item", "title", "name", "description"),
		Category: pick(o, "category", "section"),
		Status:   pick(o, "status"),
		Remarks:  pick(o, "remarks", "comments", "notes"),
	}
	if done, ok := pickFlag(o, "completed", "isCompleted", "done", "checked"); ok {
		c.Completed = done
		if c.Status == "" {
			c.Status = "Pending"
			if done {
				c.Status = "Completed"
			}
		}
	}
	return nil
}

// StaffMember person assigned to a designation
type StaffMember struct {
	ID    Text `json:"id"`
	Name  Text `json:"name"`
	Email Text `json:"email"`
	Phone Text `json:"phone"`
}

// UnmarshalJSON accepts a member object or a bare name
func (s *StaffMember) UnmarshalJSON(b []byte) error {
	if t := bytes.TrimSpace(b); len(t) > 0 && t[0] == '"' {
		var name Text
		if err := name.UnmarshalJSON(t); err != nil {
			return err
		}
		*s = StaffMember{Name: name}
		return nil
	}
	o, err := object(b)
	if err != nil {
		return err
	}
	*s = StaffMember{
		ID:    pick(o, "id", "staffId"),
		Name:  pick(o, "name", "fullName", "staffName"),
		Email: pick(o, "email"),
		Phone: pick(o, "phone", "mobile"),
	}
	return nil
}

// StaffDesignation designation with its assigned staff, in assignment order
type StaffDesignation struct {
	Designation Text          `json:"designation"`
	Staff       []StaffMember `json:"staff"`
}

func (d *StaffDesignation) UnmarshalJSON(b []byte) error {
	o, err := object(b)
	if err != nil {
		return err
	}
	*d = StaffDesignation{Designation: pick(o, "designation", "role", "position")}
	for _, key := range []string{"staff", "members", "assignedStaff"} {
		raw, ok := o[key]
		if !ok {
			continue
		}
		if arrayLen(raw) >= 0 {
			d.Staff = decodeList[StaffMember](raw)
		} else if isTruthy(raw) {
			var one StaffMember
			if err := one.UnmarshalJSON(raw); err == nil {
				d.Staff = []StaffMember{one}
			}
		}
		break
	}
	return nil
}

// Labour trade headcount
type Labour struct {
	Trade   Text `json:"trade"`
	Planned Text `json:"planned"`
	Actual  Text `json:"actual"`
	Remarks Text `json:"remarks"`
}

func (l *Labour) UnmarshalJSON(b []byte) error {
	o, err := object(b)
	if err != nil {
		return err
	}
	*l = Labour{
		Trade:   pick(o, "trade", "category", "designation", "name"),
		Planned: pick(o, "planned", "plannedCount", "required"),
		Actual:  pick(o, "actual", "actualCount", "count", "quantity", "onSite"),
		Remarks: pick(o, "remarks", "comments", "notes"),
	}
	return nil
}

// LabourSupply subcontracted labour supply line
type LabourSupply struct {
	Supplier  Text `json:"supplier"`
	Trade     Text `json:"trade"`
	Quantity  Text `json:"quantity"`
	StartDate Text `json:"startDate"`
	EndDate   Text `json:"endDate"`
	Status    Text `json:"status"`
	Remarks   Text `json:"remarks"`
}

func (l *LabourSupply) UnmarshalJSON(b []byte) error {
	o, err := object(b)
	if err != nil {
		return err
	}
	*l = LabourSupply{
		Supplier:  pick(o, "supplier", "company", "subcontractor", "name"),
		Trade:     pick(o, "trade", "category"),
		Quantity:  pick(o, "quantity", "count", "manpower"),
		StartDate: pick(o, "startDate", "from"),
		EndDate:   pick(o, "endDate", "to"),
		Status:    pick(o, "status"),
		Remarks:   pick(o, "remarks", "comments", "notes"),
	}
	return nil
}

// Plant plant / equipment line
type Plant struct {
	Name     Text `json:"name"`
	Type     Text `json:"type"`
	Quantity Text `json:"quantity"`
	Status   Text `json:"status"`
	Remarks  Text `json:"remarks"`
}

func (p *Plant) UnmarshalJSON(b []byte) error {
	o, err := object(b)
	if err != nil {
		return err
	}
	*p = Plant{
		Name:     pick(o, "name", "plant", "equipment", "description"),
		Type:     pick(o, "type", "category"),
		Quantity: pick(o, "quantity", "count"),
		Status:   pick(o, "status", "condition"),
		Remarks:  pick(o, "remarks", "comments", "notes"),
	}
	return nil
}

// Asset project asset
type Asset struct {
	Name     Text `json:"name"`
	Category Text `json:"category"`
	Quantity Text `json:"quantity"`
	Location Text `json:"location"`
	Status   Text `json:"status"`
	Remarks  Text `json:"remarks"`
}

func (a *Asset) UnmarshalJSON(b []byte) error {
	o, err := object(b)
	if err != nil {
		return err
	}
	*a = Asset{
		Name:     pick(o, "name", "asset", "description"),
		Category: pick(o, "category", "type"),
		Quantity: pick(o, "quantity", "count"),
		Location: pick(o, "location"),
		Status:   pick(o, "status", "condition"),
		Remarks:  pick(o, "remarks", "comments", "notes"),
	}
	return nil
}

// Picture site photograph
type Picture struct {
	ID         Text `json:"id"`
	URL        Text `json:"url"`
	Caption    Text `json:"caption"`
	IsFeatured Flag `json:"isFeatured"`
}

func (p *Picture) UnmarshalJSON(b []byte) error {
	o, err := object(b)
	if err != nil {
		return err
	}
	*p = Picture{
		ID:      pick(o, "id"),
		URL:     pick(o, "url", "imageUrl", "fileUrl", "src", "path"),
		Caption: pick(o, "caption", "title", "description"),
	}
	if f, ok := pickFlag(o, "isFeatured", "featured"); ok {
		p.IsFeatured = f
	}
	return nil
}

// CloseOutItem close-out activity
type CloseOutItem struct {
	Item        Text `json:"item"`
	Responsible Text `json:"responsible"`
	DueDate     Text `json:"dueDate"`
	Status      Text `json:"status"`
	Remarks     Text `json:"remarks"`
}

func (c *CloseOutItem) UnmarshalJSON(b []byte) error {
	o, err := object(b)
	if err != nil {
		return err
	}
	*c = CloseOutItem{
		Item:        pick(o, "item", "title", "activity", "description"),
		Responsible: pick(o, "responsible", "responsibleParty", "owner"),
		DueDate:     pick(o, "dueDate", "targetDate"),
		Status:      pick(o, "status"),
		Remarks:     pick(o, "remarks", "comments", "notes"),
	}
	return nil
}

// Feedback client feedback entry
type Feedback struct {
	Author  Text `json:"author"`
	Date    Text `json:"date"`
	Rating  Text `json:"rating"`
	Comment Text `json:"comment"`
	Status  Text `json:"status"`
}

func (f *Feedback) UnmarshalJSON(b []byte) error {
	o, err := object(b)
	if err != nil {
		return err
	}
	*f = Feedback{
		Author:  pick(o, "clientName", "author", "name", "by"),
		Date:    pick(o, "date", "feedbackDate"),
		Rating:  pick(o, "rating", "score"),
		Comment: pick(o, "comment", "feedback", "comments", "remarks"),
		Status:  pick(o, "status"),
	}
	return nil
}
