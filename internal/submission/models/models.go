// Package models defines the durable shape of form submissions.
package models

import "time"

// Submitter is the request metadata recorded with a message.
type Submitter struct {
	Address string `json:"address"`
	Client  string `json:"client"`
}

// Message is one stored form submission. Values carries the raw form
// fields; Document is the generated localized certificate text, when the
// form type has one. File is the declared name of an uploaded attachment;
// the portal records the reference only.
type Message struct {
	ID            string            `json:"id"`
	SubmitterName string            `json:"name"`
	Form          string            `json:"form"`
	Values        map[string]string `json:"values,omitempty"`
	Document      string            `json:"document,omitempty"`
	File          string            `json:"file,omitempty"`
	Submitter     Submitter         `json:"user"`
	TimeUTC       time.Time         `json:"time-UTC"`
	Page          string            `json:"page"`
}
