// Package identity with the client for the fleet provisioning service.
// A device with claim credentials requests a permanent certificate, either
// generated by the service or signed from its own CSR, and then registers
// itself as a thing through a provisioning template.
package identity

import "fmt"

// CreateKeysAndCertificateRequest asks the service to generate a key pair
// and certificate. The request has no fields, its payload is an empty
// JSON document.
type CreateKeysAndCertificateRequest struct {
}

// TopicParams returns the topic placeholder values; the create topics
// have none
func (request *CreateKeysAndCertificateRequest) TopicParams() map[string]string {
	return nil
}

// CreateKeysAndCertificateResponse with the generated credentials.
// The private key is only ever returned here; store it before registering.
type CreateKeysAndCertificateResponse struct {
	CertificateID string `json:"certificateId,omitempty"`
	// CertificatePem with the new certificate
	CertificatePem string `json:"certificatePem,omitempty"`
	// PrivateKey in PEM format, generated by the service
	PrivateKey string `json:"privateKey,omitempty"`
	// CertificateOwnershipToken proves possession in RegisterThing
	CertificateOwnershipToken string `json:"certificateOwnershipToken,omitempty"`
}

// CreateCertificateFromCsrRequest asks the service to sign a certificate
// from the device's own certificate signing request, so the private key
// never leaves the device
type CreateCertificateFromCsrRequest struct {
	// CertificateSigningRequest in PEM format
	CertificateSigningRequest string `json:"certificateSigningRequest"`
}

// TopicParams returns the topic placeholder values; the create topics
// have none
func (request *CreateCertificateFromCsrRequest) TopicParams() map[string]string {
	return nil
}

// CreateCertificateFromCsrResponse with the signed certificate
type CreateCertificateFromCsrResponse struct {
	CertificateID             string `json:"certificateId,omitempty"`
	CertificatePem            string `json:"certificatePem,omitempty"`
	CertificateOwnershipToken string `json:"certificateOwnershipToken,omitempty"`
}

// RegisterThingRequest registers the thing through a provisioning template
// using the ownership token of a previously created certificate
type RegisterThingRequest struct {
	// TemplateName of the provisioning template to apply
	TemplateName string `json:"templateName"`
	// CertificateOwnershipToken from the create response
	CertificateOwnershipToken string `json:"certificateOwnershipToken"`
	// Parameters consumed by the provisioning template, eg a serial number
	Parameters map[string]string `json:"parameters,omitempty"`
}

// TopicParams returns the topic placeholder values
func (request *RegisterThingRequest) TopicParams() map[string]string {
	return map[string]string{"templateName": request.TemplateName}
}

// RegisterThingResponse with the thing name and device configuration the
// template produced
type RegisterThingResponse struct {
	DeviceConfiguration map[string]interface{} `json:"deviceConfiguration,omitempty"`
	ThingName           string                 `json:"thingName,omitempty"`
}

// ErrorResponse is sent by the provisioning service on the rejected topics
type ErrorResponse struct {
	// StatusCode with the HTTP-like status of the failure
	StatusCode int `json:"statusCode"`
	// ErrorCode with the failure identifier, eg "InvalidCertificateOwnershipToken"
	ErrorCode string `json:"errorCode"`
	// ErrorMessage describing the failure
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Error makes a rejected response usable as a Go error
func (response *ErrorResponse) Error() string {
	return fmt.Sprintf("identity service error %d (%s): %s",
		response.StatusCode, response.ErrorCode, response.ErrorMessage)
}

// CreateKeysAndCertificateSubscriptionRequest parameterizes the create
// response topics, which have no placeholders
type CreateKeysAndCertificateSubscriptionRequest struct {
}

// TopicParams returns the topic placeholder values
func (request *CreateKeysAndCertificateSubscriptionRequest) TopicParams() map[string]string {
	return nil
}

// CreateCertificateFromCsrSubscriptionRequest parameterizes the CSR create
// response topics, which have no placeholders
type CreateCertificateFromCsrSubscriptionRequest struct {
}

// TopicParams returns the topic placeholder values
func (request *CreateCertificateFromCsrSubscriptionRequest) TopicParams() map[string]string {
	return nil
}

// RegisterThingSubscriptionRequest parameterizes the register response
// topics of one provisioning template
type RegisterThingSubscriptionRequest struct {
	TemplateName string
}

// TopicParams returns the topic placeholder values
func (request *RegisterThingSubscriptionRequest) TopicParams() map[string]string {
	return map[string]string{"templateName": request.TemplateName}
}
