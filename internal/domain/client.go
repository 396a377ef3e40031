package domain

type Client struct {
	ID            string `json:"id"`
	Name          string `json:"name" validate:"required"`
	ContactPerson string `json:"contactPerson,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Location      string `json:"location,omitempty"`
}

type ClientPatch struct {
	Name          *string `json:"name,omitempty"`
	ContactPerson *string `json:"contactPerson,omitempty"`
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Location      *string `json:"location,omitempty"`
}

func (p ClientPatch) Apply(c *Client) {
	setString(&c.Name, p.Name)
	setString(&c.ContactPerson, p.ContactPerson)
	setString(&c.Email, p.Email)
	setString(&c.Phone, p.Phone)
	setString(&c.Location, p.Location)
}
