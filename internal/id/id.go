// Package id provides ID generation helpers used across the service.
package id

import (
	nanoid "github.com/matoous/go-nanoid/v2"
)

const DefaultLength = 21

const (
	PrefixRequest  = "req"
	PrefixToolCall = "tc"
)

func New(prefix string) string {
	id, err := nanoid.New(DefaultLength)
	if err != nil {
		panic("nanoid generation failed: " + err.Error())
	}
	return prefix + "_" + id
}

func NewRequest() string  { return New(PrefixRequest) }
func NewToolCall() string { return New(PrefixToolCall) }
