// Package mocks provides test doubles for the store package.
package mocks

import (
	"context"
	"time"

	mock "github.com/stretchr/testify/mock"

	"github.com/poolfinder/pool-cli/internal/model"
	"github.com/poolfinder/pool-cli/internal/store"
)

var _ store.Store = (*MockStore)(nil)

// MockStore is a mock type for the Store interface.
type MockStore struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, rec
func (_m *MockStore) Create(ctx context.Context, rec *model.FacilityRecord) error {
	ret := _m.Called(ctx, rec)
	if rf, ok := ret.Get(0).(func(context.Context, *model.FacilityRecord) error); ok {
		return rf(ctx, rec)
	}
	return ret.Error(0)
}

// Update provides a mock function with given fields: ctx, rec
func (_m *MockStore) Update(ctx context.Context, rec *model.FacilityRecord) error {
	ret := _m.Called(ctx, rec)
	return ret.Error(0)
}

// Get provides a mock function with given fields: ctx, id
func (_m *MockStore) Get(ctx context.Context, id int64) (*model.FacilityRecord, error) {
	ret := _m.Called(ctx, id)
	var r0 *model.FacilityRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.FacilityRecord)
	}
	return r0, ret.Error(1)
}

// FindByKey provides a mock function with given fields: ctx, key
func (_m *MockStore) FindByKey(ctx context.Context, key model.Key) (*model.FacilityRecord, error) {
	ret := _m.Called(ctx, key)
	var r0 *model.FacilityRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.FacilityRecord)
	}
	return r0, ret.Error(1)
}

// List provides a mock function with given fields: ctx, filter
func (_m *MockStore) List(ctx context.Context, filter store.ListFilter) ([]model.FacilityRecord, error) {
	ret := _m.Called(ctx, filter)
	var r0 []model.FacilityRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.FacilityRecord)
	}
	return r0, ret.Error(1)
}

// ListInBounds provides a mock function with given fields: ctx, filter
func (_m *MockStore) ListInBounds(ctx context.Context, filter store.BoundsFilter) ([]model.FacilityRecord, error) {
	ret := _m.Called(ctx, filter)
	var r0 []model.FacilityRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.FacilityRecord)
	}
	return r0, ret.Error(1)
}

// ListForEnrichment provides a mock function with given fields: ctx, filter
func (_m *MockStore) ListForEnrichment(ctx context.Context, filter store.EnrichmentFilter) ([]model.FacilityRecord, error) {
	ret := _m.Called(ctx, filter)
	var r0 []model.FacilityRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.FacilityRecord)
	}
	return r0, ret.Error(1)
}

// MarkEnrichment provides a mock function with given fields: ctx, id, status, at
func (_m *MockStore) MarkEnrichment(ctx context.Context, id int64, status model.EnrichmentStatus, at time.Time) error {
	ret := _m.Called(ctx, id, status, at)
	return ret.Error(0)
}

// CountByStatus provides a mock function with given fields: ctx
func (_m *MockStore) CountByStatus(ctx context.Context) (map[model.EnrichmentStatus]int, error) {
	ret := _m.Called(ctx)
	var r0 map[model.EnrichmentStatus]int
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[model.EnrichmentStatus]int)
	}
	return r0, ret.Error(1)
}

// SaveRun provides a mock function with given fields: ctx, run
func (_m *MockStore) SaveRun(ctx context.Context, run *model.EnrichmentRun) error {
	ret := _m.Called(ctx, run)
	return ret.Error(0)
}

// ListRuns provides a mock function with given fields: ctx, limit
func (_m *MockStore) ListRuns(ctx context.Context, limit int) ([]model.EnrichmentRun, error) {
	ret := _m.Called(ctx, limit)
	var r0 []model.EnrichmentRun
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.EnrichmentRun)
	}
	return r0, ret.Error(1)
}

// Migrate provides a mock function with given fields: ctx
func (_m *MockStore) Migrate(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

// Close provides a mock function with no fields
func (_m *MockStore) Close() error {
	ret := _m.Called()
	return ret.Error(0)
}

// NewMockStore creates a new instance of MockStore. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStore {
	m := &MockStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
