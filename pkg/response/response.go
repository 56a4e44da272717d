package response

// ErrorBody is the body of every failed request.
type ErrorBody struct {
	Error string `json:"error"`
}

// Error wraps an error message
func Error(message string) ErrorBody {
	return ErrorBody{Error: message}
}

// List is a page of results with the total count of the unpaged query.
type List struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Page(data interface{}, total int64, page, limit int) List {
	return List{Data: data, Total: total, Page: page, Limit: limit}
}

// Message acknowledges a request that returns no entity.
type Message struct {
	Message string `json:"message"`
}

func OK(message string) Message {
	return Message{Message: message}
}
