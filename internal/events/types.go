package events

// Sessioned is implemented by every browser event so consumers can route
// events to the session that produced them
type Sessioned interface {
	Session() string
}

type ListLoaded struct {
	SessionID string `json:"-"`
	Count     int    `json:"count"`
	Failed    bool   `json:"failed"`
}

type PageChanged struct {
	SessionID  string `json:"-"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
}

type VisibilityChanged struct {
	SessionID string `json:"-"`
	Visible   bool   `json:"visible"`
}

type ProductSelected struct {
	SessionID string `json:"-"`
	ProductID string `json:"product_id"`
	Location  string `json:"location"`
	Collapsed bool   `json:"collapsed"`
}

type DetailStateChanged struct {
	SessionID  string `json:"-"`
	ProductID  string `json:"product_id"`
	Status     string `json:"status"`
	Generation uint64 `json:"generation"`
}

func (e ListLoaded) Session() string         { return e.SessionID }
func (e PageChanged) Session() string        { return e.SessionID }
func (e VisibilityChanged) Session() string  { return e.SessionID }
func (e ProductSelected) Session() string    { return e.SessionID }
func (e DetailStateChanged) Session() string { return e.SessionID }
