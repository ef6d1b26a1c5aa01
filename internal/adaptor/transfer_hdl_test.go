package adaptor

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"event-ticketing/internal/dto/response"
	"event-ticketing/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestTransferHandler_Initiate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	ticketID := uuid.New()
	body := fmt.Sprintf(`{"ticket_id":%q,"recipient_email":"bob@example.com"}`, ticketID)

	tests := []struct {
		name         string
		body         string
		err          error
		callsService bool
		expectedCode int
		message      string
	}{
		{name: "success", body: body, callsService: true, expectedCode: http.StatusOK},
		{name: "bad email", body: fmt.Sprintf(`{"ticket_id":%q,"recipient_email":"bob"}`, ticketID), expectedCode: http.StatusBadRequest},
		{name: "not owner", body: body, err: usecase.ErrNotOwner, callsService: true, expectedCode: http.StatusForbidden},
		{name: "recipient invalid is generic", body: body, err: usecase.ErrRecipientInvalid, callsService: true, expectedCode: http.StatusForbidden, message: "This ticket cannot be transferred to that recipient"},
		{name: "already pending", body: body, err: usecase.ErrTransferAlreadyPending, callsService: true, expectedCode: http.StatusConflict},
		{name: "ticket not found", body: body, err: usecase.ErrTicketNotFound, callsService: true, expectedCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := new(MockTransferService)
			if tt.callsService {
				var resp *response.TransferResponse
				if tt.err == nil {
					resp = &response.TransferResponse{ID: uuid.NewString()}
				}
				svc.On("Initiate", mock.Anything, userID, mock.Anything).Return(resp, tt.err)
			}
			h := NewTransferHandler(svc, zap.NewNop())

			req := withUser(httptest.NewRequest(http.MethodPost, "/api/transfers", bytes.NewBufferString(tt.body)), userID)
			rec := httptest.NewRecorder()
			h.Initiate(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, decodeEnvelope(t, rec).Message)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestTransferHandler_SignedActions(t *testing.T) {
	t.Parallel()

	transferID := uuid.New()

	tests := []struct {
		name         string
		action       string
		err          error
		expectedCode int
	}{
		{name: "accept ok", action: "Accept", expectedCode: http.StatusOK},
		{name: "reject ok", action: "Reject", expectedCode: http.StatusOK},
		{name: "bad signature", action: "Accept", err: usecase.ErrInvalidSignature, expectedCode: http.StatusForbidden},
		{name: "expired", action: "Reject", err: usecase.ErrSignatureExpired, expectedCode: http.StatusForbidden},
		{name: "already processed", action: "Accept", err: usecase.ErrAlreadyProcessed, expectedCode: http.StatusConflict},
		{name: "unknown transfer", action: "Reject", err: usecase.ErrTransferNotFound, expectedCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := new(MockTransferService)
			svc.On(tt.action, mock.Anything, transferID, "tok").Return(tt.err)
			h := NewTransferHandler(svc, zap.NewNop())

			req := httptest.NewRequest(http.MethodGet, "/api/transfers/"+transferID.String()+"/x?signature=tok", nil)
			req = withURLParams(req, map[string]string{"id": transferID.String()})
			rec := httptest.NewRecorder()

			if tt.action == "Accept" {
				h.Accept(rec, req)
			} else {
				h.Reject(rec, req)
			}

			assert.Equal(t, tt.expectedCode, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestTransferHandler_Cancel(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	transferID := uuid.New()

	tests := []struct {
		name         string
		err          error
		expectedCode int
	}{
		{name: "ok", expectedCode: http.StatusOK},
		{name: "not initiator", err: usecase.ErrNotInitiator, expectedCode: http.StatusForbidden},
		{name: "already processed", err: usecase.ErrAlreadyProcessed, expectedCode: http.StatusConflict},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := new(MockTransferService)
			svc.On("Cancel", mock.Anything, transferID, userID).Return(tt.err)
			h := NewTransferHandler(svc, zap.NewNop())

			req := httptest.NewRequest(http.MethodPost, "/api/transfers/"+transferID.String()+"/cancel", nil)
			req = withURLParams(withUser(req, userID), map[string]string{"id": transferID.String()})
			rec := httptest.NewRecorder()
			h.Cancel(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}
