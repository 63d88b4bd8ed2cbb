package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ecobasket/internal/domain/model"
	"ecobasket/internal/infra/rest"
)

func TestVerify_Success(t *testing.T) {
	api := new(MockPaymentAPI)
	proof := model.PaymentProof{OrderID: "o1", PaymentID: "pay-1", Signature: "sig"}
	api.On("VerifyPayment", mock.Anything, proof).
		Return(model.Order{ID: "o1", PaymentStatus: model.PaymentStatusCompleted}, nil)

	v := NewPaymentVerifier(api)
	order, err := v.Verify(context.Background(), proof)

	assert.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, order.PaymentStatus)
}

func TestVerify_RejectionIsAuthoritative(t *testing.T) {
	api := new(MockPaymentAPI)
	api.On("VerifyPayment", mock.Anything, mock.Anything).
		Return(model.Order{}, &rest.StatusError{Status: 400, Message: "invalid signature"})

	v := NewPaymentVerifier(api)
	_, err := v.Verify(context.Background(), model.PaymentProof{OrderID: "o1"})

	var ve *VerificationError
	assert.True(t, errors.As(err, &ve))
	assert.False(t, ve.Transient)
}

func TestVerify_NetworkErrorIsTransient(t *testing.T) {
	api := new(MockPaymentAPI)
	api.On("VerifyPayment", mock.Anything, mock.Anything).
		Return(model.Order{}, errors.New("connection refused"))

	v := NewPaymentVerifier(api)
	_, err := v.Verify(context.Background(), model.PaymentProof{OrderID: "o1"})

	var ve *VerificationError
	assert.True(t, errors.As(err, &ve))
	assert.True(t, ve.Transient)
}
