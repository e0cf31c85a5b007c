package view

// Response is the envelope every API endpoint responds with.
type Response[T any] struct {
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type PagingResponse[T any] struct {
	Total int64 `json:"total"`
	Data  []T   `json:"data"`
}

func CreateResponse[T any](data T, err error, _ any, message string) Response[T] {
	errStr := ""
	if err != nil {
		errStr = err.Error()
	}

	return Response[T]{
		Data:    data,
		Error:   errStr,
		Message: message,
	}
}
