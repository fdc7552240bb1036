package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Outcome is the result of one forwarding attempt. It is exactly one of DownstreamResponse,
// TransportErrorWithResponse, TransportErrorNoResponse or UnexpectedError.
type Outcome interface {
	outcome()
}

// DownstreamResponse is any HTTP response from the downstream service, whatever its status
type DownstreamResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// TransportErrorWithResponse is a failed call that still captured a downstream response,
// such as a redirect policy failure
type TransportErrorWithResponse struct {
	Status int
	Header http.Header
	Body   []byte
	Err    error
}

// TransportErrorNoResponse is a call that never got a usable response: refused connections,
// DNS failures, timeouts and bodies aborted mid-stream
type TransportErrorNoResponse struct {
	Err error
}

// UnexpectedError is any other failure while forwarding
type UnexpectedError struct {
	Err error
}

func (DownstreamResponse) outcome()         {}
func (TransportErrorWithResponse) outcome() {}
func (TransportErrorNoResponse) outcome()   {}
func (UnexpectedError) outcome()            {}

// Response is what the gateway sends back for a request
type Response struct {
	Status int
	Header http.Header
	Data   []byte
}

// ErrorEnvelope is the body of every gateway-generated failure
type ErrorEnvelope struct {
	Success bool         `json:"success"`
	Payload ErrorPayload `json:"payload"`
}

// ErrorPayload carries the human readable failure description
type ErrorPayload struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Messages of gateway-generated failures
const (
	MessageInvalidToken  = "Invalid token"
	MessageInternalError = "Internal gateway error"
)

// MapOutcome converts a forwarding outcome into the gateway response
func MapOutcome(service string, o Outcome) *Response {
	switch o := o.(type) {
	case DownstreamResponse:
		return &Response{Status: o.Status, Header: ResponseHeaders(o.Header), Data: o.Body}
	case TransportErrorWithResponse:
		return &Response{Status: o.Status, Header: ResponseHeaders(o.Header), Data: o.Body}
	case TransportErrorNoResponse:
		return ErrorResponse(http.StatusServiceUnavailable, UnavailableMessage(service))
	default:
		return ErrorResponse(http.StatusInternalServerError, MessageInternalError)
	}
}

// UnavailableMessage is the 503 message for a service that did not answer
func UnavailableMessage(service string) string {
	return fmt.Sprintf("Service '%s' unavailable. No response.", service)
}

// ErrorResponse builds a JSON failure response
func ErrorResponse(status int, message string) *Response {
	envelope := ErrorEnvelope{
		Success: false,
		Payload: ErrorPayload{
			Message:   message,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
	// Marshalling two strings cannot fail.
	data, _ := json.Marshal(envelope)

	header := make(http.Header)
	header.Set("Content-Type", "application/json; charset=utf-8")
	return &Response{Status: status, Header: header, Data: data}
}
