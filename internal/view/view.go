package view

// Response is the envelope returned by every API endpoint.
type Response[T any] struct {
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Request any    `json:"request,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type PagingResponse[T any] struct {
	Data    []T   `json:"data"`
	Page    int   `json:"page"`
	HasMore bool  `json:"has_more"`
	Total   int64 `json:"total"`
}

func CreateResponse[T any](data T, err error, request any, message string) Response[T] {
	resp := Response[T]{
		Data:    data,
		Message: message,
		Request: request,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}
