// Package mocks provides test doubles for the runpod client.
package mocks

import (
	"context"

	runpod "github.com/sells-group/gpu-prices/pkg/runpod"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// ListGPUTypes provides a mock function with given fields: ctx
func (_m *MockClient) ListGPUTypes(ctx context.Context) ([]runpod.GPUType, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for ListGPUTypes")
	}

	var r0 []runpod.GPUType
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) ([]runpod.GPUType, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) []runpod.GPUType); ok {
		r0 = rf(ctx)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]runpod.GPUType)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
