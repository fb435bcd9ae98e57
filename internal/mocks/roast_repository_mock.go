package mocks

import (
	"context"
	"roast-server/internal/models"
	"roast-server/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockRoastRepository is a mock type for the RoastRepository type
type MockRoastRepository struct {
	mock.Mock
}

// Save provides a mock function with given fields: ctx, id, roast
func (_m *MockRoastRepository) Save(ctx context.Context, id string, roast *models.Roast) error {
	ret := _m.Called(ctx, id, roast)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, *models.Roast) error); ok {
		r0 = rf(ctx, id, roast)
	} else {
		err := ret.Error(0)
		if err != nil {
			r0 = err
		}
	}

	return r0
}

// Get provides a mock function with given fields: ctx, id
func (_m *MockRoastRepository) Get(ctx context.Context, id string) (*models.Roast, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Roast
	if rf, ok := ret.Get(0).(func(context.Context, string) *models.Roast); ok {
		r0 = rf(ctx, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.Roast)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, id)
	} else {
		err := ret.Error(1)
		if err != nil {
			r1 = err
		}
	}

	return r0, r1
}

// MarkPaid provides a mock function with given fields: ctx, id
func (_m *MockRoastRepository) MarkPaid(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, id)
	} else {
		err := ret.Error(0)
		if err != nil {
			r0 = err
		}
	}

	return r0
}

// SetReady provides a mock function with given fields: ctx, id, ready
func (_m *MockRoastRepository) SetReady(ctx context.Context, id string, ready *models.Roast) error {
	ret := _m.Called(ctx, id, ready)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, *models.Roast) error); ok {
		r0 = rf(ctx, id, ready)
	} else {
		err := ret.Error(0)
		if err != nil {
			r0 = err
		}
	}

	return r0
}

// SetError provides a mock function with given fields: ctx, id, message
func (_m *MockRoastRepository) SetError(ctx context.Context, id string, message string) error {
	ret := _m.Called(ctx, id, message)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) error); ok {
		r0 = rf(ctx, id, message)
	} else {
		err := ret.Error(0)
		if err != nil {
			r0 = err
		}
	}

	return r0
}

// SaveProgress provides a mock function with given fields: ctx, id, progress
func (_m *MockRoastRepository) SaveProgress(ctx context.Context, id string, progress *models.JobProgress) error {
	ret := _m.Called(ctx, id, progress)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, *models.JobProgress) error); ok {
		r0 = rf(ctx, id, progress)
	} else {
		err := ret.Error(0)
		if err != nil {
			r0 = err
		}
	}

	return r0
}

// GetProgress provides a mock function with given fields: ctx, id
func (_m *MockRoastRepository) GetProgress(ctx context.Context, id string) (*models.JobProgress, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.JobProgress
	if rf, ok := ret.Get(0).(func(context.Context, string) *models.JobProgress); ok {
		r0 = rf(ctx, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.JobProgress)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, id)
	} else {
		err := ret.Error(1)
		if err != nil {
			r1 = err
		}
	}

	return r0, r1
}

// ClearProgress provides a mock function with given fields: ctx, id
func (_m *MockRoastRepository) ClearProgress(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, id)
	} else {
		err := ret.Error(0)
		if err != nil {
			r0 = err
		}
	}

	return r0
}

// NewMockRoastRepository creates a new instance of MockRoastRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockRoastRepository(t interface {
	mock.TestingT
	Helper()
}) *MockRoastRepository {
	m := &MockRoastRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.RoastRepository = (*MockRoastRepository)(nil)
