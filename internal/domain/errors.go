package domain

import "errors"

var (
	// ErrIndexBuild indicates the source page could not be fetched, extracted,
	// chunked, or embedded; no session is created.
	ErrIndexBuild = errors.New("could not process document")
	// ErrSessionNotFound indicates a chat referenced an unknown session id
	ErrSessionNotFound = errors.New("session not found")
	// ErrRetrieval indicates query embedding or index lookup failed; the turn
	// is aborted without touching the conversation log.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrGeneration indicates a rewrite or answer call against the language
	// model failed; the turn is aborted without touching the conversation log.
	ErrGeneration = errors.New("generation failed")
)
