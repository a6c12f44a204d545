package webhook

import "github.com/stretchr/testify/mock"

// MatchIdempotencyRecord creates a custom matcher for idempotency records in mocks
func MatchIdempotencyRecord(matcher func(IdempotencyRecord) bool) interface{} {
	return mock.MatchedBy(matcher)
}

// MatchResultRecord creates a custom matcher for audit records in mocks
func MatchResultRecord(matcher func(ResultRecord) bool) interface{} {
	return mock.MatchedBy(matcher)
}

// MatchContact creates a custom matcher for contacts in mocks
func MatchContact(matcher func(Contact) bool) interface{} {
	return mock.MatchedBy(matcher)
}
