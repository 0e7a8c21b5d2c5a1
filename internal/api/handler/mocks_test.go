package handler_test

import (
	"context"
	"time"

	"github.com/nagarajgmcs24/fwdproject/internal/models"
	"github.com/nagarajgmcs24/fwdproject/internal/storage"
	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) ListWards(ctx context.Context) ([]models.Ward, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ward), args.Error(1)
}

func (m *MockStorage) ListCategories(ctx context.Context) ([]models.ProblemCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProblemCategory), args.Error(1)
}

func (m *MockStorage) ListComplaints(ctx context.Context, filter storage.ComplaintFilter) ([]models.Complaint, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) ListPendingVerification(ctx context.Context, createdBefore time.Time, limit int) ([]models.Complaint, error) {
	args := m.Called(ctx, createdBefore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	args := m.Called(ctx, complaint)
	if args.Error(0) == nil {
		complaint.ID = "c-1"
		complaint.Status = models.StatusPending
		complaint.VerificationStatus = models.VerificationPending
	}
	return args.Error(0)
}

func (m *MockStorage) UpdateVerification(ctx context.Context, id string, update storage.VerificationUpdate) error {
	return m.Called(ctx, id, update).Error(0)
}

func (m *MockStorage) UpdateStatus(ctx context.Context, id, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockStorage) AddComplaintUpdate(ctx context.Context, update *models.ComplaintUpdate) error {
	return m.Called(ctx, update).Error(0)
}

func (m *MockStorage) PublishEvent(ctx context.Context, event models.ComplaintEvent) error {
	return m.Called(ctx, event).Error(0)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Put(ctx context.Context, bucket, name, contentType string, data []byte) error {
	return m.Called(ctx, bucket, name, contentType, data).Error(0)
}

func (m *MockStore) PublicURL(bucket, name string) string {
	return m.Called(bucket, name).String(0)
}

func (m *MockStore) Delete(ctx context.Context, bucket, name string) error {
	return m.Called(ctx, bucket, name).Error(0)
}
