package mocks

import (
	"context"
	"roast-server/internal/models"
	"roast-server/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockChartClient is a mock type for the ChartClient type
type MockChartClient struct {
	mock.Mock
}

// ComputeChart provides a mock function with given fields: ctx, details
func (_m *MockChartClient) ComputeChart(ctx context.Context, details models.BirthDetails) (*models.ChartData, error) {
	ret := _m.Called(ctx, details)

	var r0 *models.ChartData
	if rf, ok := ret.Get(0).(func(context.Context, models.BirthDetails) *models.ChartData); ok {
		r0 = rf(ctx, details)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.ChartData)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, models.BirthDetails) error); ok {
		r1 = rf(ctx, details)
	} else {
		err := ret.Error(1)
		if err != nil {
			r1 = err
		}
	}

	return r0, r1
}

// NewMockChartClient creates a new instance of MockChartClient. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockChartClient(t interface {
	mock.TestingT
	Helper()
}) *MockChartClient {
	m := &MockChartClient{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.ChartClient = (*MockChartClient)(nil)
