// Package shadow with the client for the device shadow service. A shadow
// is a JSON state document the service keeps per thing, with desired and
// reported sections that device and applications converge through delta
// events. Next to the classic unnamed shadow each thing can have any number
// of named shadows.
package shadow

import "fmt"

// ShadowState holds the desired and reported sections of a shadow document.
// Nil sections are omitted from the wire format. A null value for a state
// key deletes that key on the service.
type ShadowState struct {
	Desired  map[string]interface{} `json:"desired,omitempty"`
	Reported map[string]interface{} `json:"reported,omitempty"`
}

// ShadowStateWithDelta is the state as returned by get, including the
// delta section the service computed between desired and reported.
type ShadowStateWithDelta struct {
	Desired  map[string]interface{} `json:"desired,omitempty"`
	Reported map[string]interface{} `json:"reported,omitempty"`
	Delta    map[string]interface{} `json:"delta,omitempty"`
}

// ShadowMetadata mirrors the shadow state document, with each leaf value
// replaced by the epoch seconds timestamp of its last update
type ShadowMetadata struct {
	Desired  map[string]interface{} `json:"desired,omitempty"`
	Reported map[string]interface{} `json:"reported,omitempty"`
}

// GetShadowRequest requests the classic shadow document of a thing
type GetShadowRequest struct {
	// ThingName whose shadow to get
	ThingName string `json:"thingName"`
	// ClientToken to correlate the accepted or rejected response, optional
	ClientToken string `json:"clientToken,omitempty"`
}

// TopicParams returns the topic placeholder values
func (request *GetShadowRequest) TopicParams() map[string]string {
	return map[string]string{"thingName": request.ThingName}
}

// GetNamedShadowRequest requests a named shadow document of a thing
type GetNamedShadowRequest struct {
	ThingName   string `json:"thingName"`
	ShadowName  string `json:"shadowName"`
	ClientToken string `json:"clientToken,omitempty"`
}

// TopicParams returns the topic placeholder values
func (request *GetNamedShadowRequest) TopicParams() map[string]string {
	return map[string]string{"thingName": request.ThingName, "shadowName": request.ShadowName}
}

// GetShadowResponse with the shadow document, received on get/accepted
type GetShadowResponse struct {
	ClientToken string                `json:"clientToken,omitempty"`
	State       *ShadowStateWithDelta `json:"state,omitempty"`
	Metadata    *ShadowMetadata       `json:"metadata,omitempty"`
	// Timestamp in epoch seconds of when the service sent the response
	Timestamp int64 `json:"timestamp,omitempty"`
	// Version of the shadow document, incremented on each update
	Version int64 `json:"version,omitempty"`
}

// UpdateShadowRequest updates the classic shadow document of a thing.
// Only the state keys present in the request are touched.
type UpdateShadowRequest struct {
	ThingName   string       `json:"thingName"`
	State       *ShadowState `json:"state,omitempty"`
	ClientToken string       `json:"clientToken,omitempty"`
	// Version the update applies to. When set, the service rejects the
	// update if the shadow has moved on. 0 to update unconditionally.
	Version int64 `json:"version,omitempty"`
}

// TopicParams returns the topic placeholder values
func (request *UpdateShadowRequest) TopicParams() map[string]string {
	return map[string]string{"thingName": request.ThingName}
}

// UpdateNamedShadowRequest updates a named shadow document of a thing
type UpdateNamedShadowRequest struct {
	ThingName   string       `json:"thingName"`
	ShadowName  string       `json:"shadowName"`
	State       *ShadowState `json:"state,omitempty"`
	ClientToken string       `json:"clientToken,omitempty"`
	Version     int64        `json:"version,omitempty"`
}

// TopicParams returns the topic placeholder values
func (request *UpdateNamedShadowRequest) TopicParams() map[string]string {
	return map[string]string{"thingName": request.ThingName, "shadowName": request.ShadowName}
}

// UpdateShadowResponse with the applied state, received on update/accepted
type UpdateShadowResponse struct {
	ClientToken string          `json:"clientToken,omitempty"`
	State       *ShadowState    `json:"state,omitempty"`
	Metadata    *ShadowMetadata `json:"metadata,omitempty"`
	Timestamp   int64           `json:"timestamp,omitempty"`
	Version     int64           `json:"version,omitempty"`
}

// DeleteShadowRequest deletes the classic shadow document of a thing
type DeleteShadowRequest struct {
	ThingName   string `json:"thingName"`
	ClientToken string `json:"clientToken,omitempty"`
}

// TopicParams returns the topic placeholder values
func (request *DeleteShadowRequest) TopicParams() map[string]string {
	return map[string]string{"thingName": request.ThingName}
}

// DeleteNamedShadowRequest deletes a named shadow document of a thing
type DeleteNamedShadowRequest struct {
	ThingName   string `json:"thingName"`
	ShadowName  string `json:"shadowName"`
	ClientToken string `json:"clientToken,omitempty"`
}

// TopicParams returns the topic placeholder values
func (request *DeleteNamedShadowRequest) TopicParams() map[string]string {
	return map[string]string{"thingName": request.ThingName, "shadowName": request.ShadowName}
}

// DeleteShadowResponse received on delete/accepted
type DeleteShadowResponse struct {
	ClientToken string `json:"clientToken,omitempty"`
	Timestamp   int64  `json:"timestamp,omitempty"`
	// Version of the document that was deleted
	Version int64 `json:"version,omitempty"`
}

// ErrorResponse is sent by the shadow service on the rejected topics
type ErrorResponse struct {
	ClientToken string `json:"clientToken,omitempty"`
	// Code with the HTTP-like status code of the failure
	Code int `json:"code"`
	// Message describing the failure
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Error makes a rejected response usable as a Go error
func (response *ErrorResponse) Error() string {
	return fmt.Sprintf("shadow service error %d: %s", response.Code, response.Message)
}

// ShadowDeltaUpdatedEvent is sent on the update/delta topic whenever the
// desired state differs from the reported state. State holds only the
// differing keys with their desired values.
type ShadowDeltaUpdatedEvent struct {
	State       map[string]interface{} `json:"state,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Timestamp   int64                  `json:"timestamp,omitempty"`
	Version     int64                  `json:"version,omitempty"`
	ClientToken string                 `json:"clientToken,omitempty"`
}

// ShadowUpdatedSnapshot is one side of a ShadowUpdatedEvent
type ShadowUpdatedSnapshot struct {
	State    *ShadowState    `json:"state,omitempty"`
	Metadata *ShadowMetadata `json:"metadata,omitempty"`
	Version  int64           `json:"version,omitempty"`
}

// ShadowUpdatedEvent is sent on the update/documents topic after each
// accepted update, with the document before and after
type ShadowUpdatedEvent struct {
	Previous  *ShadowUpdatedSnapshot `json:"previous,omitempty"`
	Current   *ShadowUpdatedSnapshot `json:"current,omitempty"`
	Timestamp int64                  `json:"timestamp,omitempty"`
}

// ShadowSubscriptionRequest parameterizes the subscription topics of the
// classic shadow. Subscription requests are never serialized, they only
// carry topic parameters.
type ShadowSubscriptionRequest struct {
	// ThingName whose shadow topics to subscribe to
	ThingName string
}

// TopicParams returns the topic placeholder values
func (request *ShadowSubscriptionRequest) TopicParams() map[string]string {
	return map[string]string{"thingName": request.ThingName}
}

// NamedShadowSubscriptionRequest parameterizes the subscription topics of
// a named shadow
type NamedShadowSubscriptionRequest struct {
	ThingName  string
	ShadowName string
}

// TopicParams returns the topic placeholder values
func (request *NamedShadowSubscriptionRequest) TopicParams() map[string]string {
	return map[string]string{"thingName": request.ThingName, "shadowName": request.ShadowName}
}
