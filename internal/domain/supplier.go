package domain

type Supplier struct {
	ID               string   `json:"id"`
	Name             string   `json:"name" validate:"required"`
	Country          string   `json:"country,omitempty"`
	Location         string   `json:"location,omitempty"`
	ContactPerson    string   `json:"contactPerson,omitempty"`
	Email            string   `json:"email,omitempty"`
	Phone            string   `json:"phone,omitempty"`
	Rating           float64  `json:"rating" validate:"gte=0,lte=5"`
	OnTimeDelivery   float64  `json:"onTimeDelivery" validate:"gte=0,lte=100"`
	PositiveComments []string `json:"positiveComments"`
	NegativeComments []string `json:"negativeComments"`
}

type SupplierPatch struct {
	Name             *string   `json:"name,omitempty"`
	Country          *string   `json:"country,omitempty"`
	Location         *string   `json:"location,omitempty"`
	ContactPerson    *string   `json:"contactPerson,omitempty"`
	Email            *string   `json:"email,omitempty"`
	Phone            *string   `json:"phone,omitempty"`
	Rating           *float64  `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	OnTimeDelivery   *float64  `json:"onTimeDelivery,omitempty" validate:"omitempty,gte=0,lte=100"`
	PositiveComments *[]string `json:"positiveComments,omitempty"`
	NegativeComments *[]string `json:"negativeComments,omitempty"`
}

func (p SupplierPatch) Apply(s *Supplier) {
	setString(&s.Name, p.Name)
	setString(&s.Country, p.Country)
	setString(&s.Location, p.Location)
	setString(&s.ContactPerson, p.ContactPerson)
	setString(&s.Email, p.Email)
	setString(&s.Phone, p.Phone)
	if p.Rating != nil {
		s.Rating = *p.Rating
	}
	if p.OnTimeDelivery != nil {
		s.OnTimeDelivery = *p.OnTimeDelivery
	}
	if p.PositiveComments != nil {
		s.PositiveComments = append([]string(nil), (*p.PositiveComments)...)
	}
	if p.NegativeComments != nil {
		s.NegativeComments = append([]string(nil), (*p.NegativeComments)...)
	}
}

// Clone returns a copy that shares no slices with s.
func (s Supplier) Clone() Supplier {
	s.PositiveComments = append([]string(nil), s.PositiveComments...)
	s.NegativeComments = append([]string(nil), s.NegativeComments...)
	return s
}
