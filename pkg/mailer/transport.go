package mailer

import "context"

// Transport is the email provider the package hands wire records to.
// Implementations own the credential slot and must be safe for concurrent use.
type Transport interface {
	// SetCredential stores the provider API key. The last call wins.
	SetCredential(key string)

	// HasCredential reports whether an API key is configured.
	HasCredential() bool

	// SendOne delivers a single email.
	SendOne(ctx context.Context, email WireEmail) (Result, error)

	// SendBatch delivers all emails in one provider call.
	SendBatch(ctx context.Context, emails []WireEmail) (Result, error)
}

// Result is what a transport reports back after a send.
type Result struct {
	// IDs are provider message ids, in submission order when the provider reports them.
	IDs []string `json:"ids,omitempty" yaml:"ids,omitempty"`
}

// WireEmail is the exact record shape a transport receives.
// Exactly one of Text and HTML is set.
type WireEmail struct {
	To      string `json:"to" yaml:"to"`
	From    string `json:"from" yaml:"from"`
	Subject string `json:"subject" yaml:"subject"`
	Text    string `json:"text,omitempty" yaml:"text,omitempty"`
	HTML    string `json:"html,omitempty" yaml:"html,omitempty"`
}
