package transport

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every API response, successful or not.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// PageMeta describes one page of a list response.
type PageMeta struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: StatusSuccess,
		Data:   data,
		Meta:   meta,
	}
}

// NewPage returns a success envelope for a list of count items.
func NewPage(data interface{}, limit, offset, count int) Envelope {
	return NewSuccess(data, PageMeta{Limit: limit, Offset: offset, Count: count})
}

// NewError returns an error envelope. detail is usually a message string; the
// health endpoint passes its dependency status through meta.
func NewError(code string, detail interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: StatusError,
		Code:   code,
		Error:  detail,
		Meta:   meta,
	}
}
