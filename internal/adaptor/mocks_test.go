package adaptor

import (
	"context"

	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockPurchaseService struct {
	mock.Mock
}

func (m *MockPurchaseService) Purchase(ctx context.Context, buyerID uuid.UUID, req *request.PurchaseRequest) (*response.PurchaseResponse, error) {
	args := m.Called(ctx, buyerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.PurchaseResponse), args.Error(1)
}

func (m *MockPurchaseService) GetPurchase(ctx context.Context, buyerID, purchaseID uuid.UUID) (*response.PurchaseResponse, error) {
	args := m.Called(ctx, buyerID, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.PurchaseResponse), args.Error(1)
}

func (m *MockPurchaseService) GetEventSeats(ctx context.Context, eventID uuid.UUID) (*response.EventSeatsResponse, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.EventSeatsResponse), args.Error(1)
}

type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) Initiate(ctx context.Context, fromUserID uuid.UUID, req *request.InitiateTransferRequest) (*response.TransferResponse, error) {
	args := m.Called(ctx, fromUserID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.TransferResponse), args.Error(1)
}

func (m *MockTransferService) Accept(ctx context.Context, transferID uuid.UUID, signature string) error {
	return m.Called(ctx, transferID, signature).Error(0)
}

func (m *MockTransferService) Reject(ctx context.Context, transferID uuid.UUID, signature string) error {
	return m.Called(ctx, transferID, signature).Error(0)
}

func (m *MockTransferService) Cancel(ctx context.Context, transferID, requesterID uuid.UUID) error {
	return m.Called(ctx, transferID, requesterID).Error(0)
}

func (m *MockTransferService) ExpireStale(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockTransferService) ListForTicket(ctx context.Context, ticketID, requesterID uuid.UUID) ([]response.TransferResponse, error) {
	args := m.Called(ctx, ticketID, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]response.TransferResponse), args.Error(1)
}

type MockVoucherService struct {
	mock.Mock
}

func (m *MockVoucherService) Resolve(ctx context.Context, code string, eventID *uuid.UUID) (*usecase.VoucherDetails, error) {
	args := m.Called(ctx, code, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.VoucherDetails), args.Error(1)
}

func (m *MockVoucherService) Lookup(ctx context.Context, code string, eventID *uuid.UUID) (*response.VoucherResponse, error) {
	args := m.Called(ctx, code, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.VoucherResponse), args.Error(1)
}
