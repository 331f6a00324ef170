package response

// Response is the JSON envelope of every endpoint
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   *ErrorData  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorData carries a machine code, a human message and optional details
type ErrorData struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Meta holds pagination info
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Success wraps data in a successful envelope. A nil data is kept as JSON null.
func Success(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// Paginated wraps a page of items with meta
func Paginated(data interface{}, page, perPage int, total int64) Response {
	totalPages := 0
	if perPage > 0 {
		totalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

// Error builds a failed envelope
func Error(code, message string) Response {
	return Response{Success: false, Error: &ErrorData{Code: code, Message: message}}
}

// ErrorWithDetails builds a failed envelope carrying structured context
func ErrorWithDetails(code, message string, details interface{}) Response {
	return Response{Success: false, Error: &ErrorData{Code: code, Message: message, Details: details}}
}

func BadRequest(message string) Response {
	return Error("BAD_REQUEST", message)
}

func Unauthorized(message string) Response {
	return Error("UNAUTHORIZED", message)
}

func Forbidden(message string) Response {
	return Error("FORBIDDEN", message)
}

func NotFound(message string) Response {
	return Error("NOT_FOUND", message)
}

func InternalError(message string) Response {
	return Error("INTERNAL_ERROR", message)
}
