// Package mocks provides test doubles for the naver client.
package mocks

import (
	"context"

	naver "github.com/poolfinder/pool-cli/pkg/naver"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// WebSearch provides a mock function with given fields: ctx, query, display
func (_m *MockClient) WebSearch(ctx context.Context, query string, display int) (*naver.WebResponse, error) {
	ret := _m.Called(ctx, query, display)

	if len(ret) == 0 {
		panic("no return value specified for WebSearch")
	}

	var r0 *naver.WebResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*naver.WebResponse)
	}
	return r0, ret.Error(1)
}

// LocalSearch provides a mock function with given fields: ctx, query, display, start
func (_m *MockClient) LocalSearch(ctx context.Context, query string, display, start int) (*naver.LocalResponse, error) {
	ret := _m.Called(ctx, query, display, start)

	if len(ret) == 0 {
		panic("no return value specified for LocalSearch")
	}

	var r0 *naver.LocalResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*naver.LocalResponse)
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
