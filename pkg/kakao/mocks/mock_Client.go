// Package mocks provides test doubles for the kakao client.
package mocks

import (
	"context"

	kakao "github.com/poolfinder/pool-cli/pkg/kakao"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// KeywordSearch provides a mock function with given fields: ctx, query, page, size
func (_m *MockClient) KeywordSearch(ctx context.Context, query string, page, size int) (*kakao.KeywordResponse, error) {
	ret := _m.Called(ctx, query, page, size)

	if len(ret) == 0 {
		panic("no return value specified for KeywordSearch")
	}

	var r0 *kakao.KeywordResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*kakao.KeywordResponse)
	}
	return r0, ret.Error(1)
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
