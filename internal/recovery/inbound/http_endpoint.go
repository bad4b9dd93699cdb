package inbound

import (
	"github.com/shandysiswandi/gofactor/internal/pkg/router"
	"github.com/shandysiswandi/gofactor/internal/recovery/usecase"
)

// HTTPEndpoint exposes HTTP handlers for the recovery factor workflows.
type HTTPEndpoint struct {
	uc uc
}

// Register binds a phone number to the address of the signing key.
// @Summary Register phone
// @Description The signature must be made over the phone number by the key whose coordinates are sent.
// @Tags Recovery, Phone
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Register payload"
// @Success 200 {object} router.successResponse{data=RegisterResponse} "Registration result"
// @Failure 400 {object} router.errorResponse "Invalid body or signature"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		PubKey: req.PubKey.input(),
		Sig:    req.Sig.input(),
		Number: req.Number,
	})
	if err != nil {
		return nil, err
	}

	return RegisterResponse{Success: resp.Success, Registered: resp.Registered}, nil
}

// StartVerification issues an SMS code for the phone bound to an address.
// @Summary Start phone verification
// @Tags Recovery, Phone
// @Accept json
// @Produce json
// @Param request body StartVerificationRequest true "Start payload"
// @Success 200 {object} router.successResponse{data=StartVerificationResponse} "Code issued"
// @Failure 400 {object} router.errorResponse "Unknown address"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Code requested too recently"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/start [post]
func (h *HTTPEndpoint) StartVerification(r *router.Request) (any, error) {
	var req StartVerificationRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.StartVerification(r.Context(), usecase.StartVerificationInput{Address: req.Address})
	if err != nil {
		return nil, err
	}

	return StartVerificationResponse{Success: resp.Success, Code: resp.Code}, nil
}

// Verify checks an SMS code and returns the recovery data of the address.
// @Summary Verify phone code
// @Tags Recovery, Phone
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verify payload"
// @Success 200 {object} router.successResponse{data=VerifyResponse} "Stored recovery data"
// @Failure 400 {object} router.errorResponse "Unknown address"
// @Failure 403 {object} router.errorResponse "Invalid code"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Address: req.Address,
		Code:    req.Code,
		Data:    req.Data,
	})
	if err != nil {
		return nil, err
	}

	return VerifyResponse{Data: resp.Data}, nil
}

// RegisterAuthenticator binds a TOTP secret to the address of the signing key.
// @Summary Register authenticator
// @Description With secretKey the signature covers the secret. Without it the signature covers the address and the server returns a new secret with its otpauth URI.
// @Tags Recovery, Authenticator
// @Accept json
// @Produce json
// @Param request body RegisterAuthenticatorRequest true "Register payload"
// @Success 200 {object} router.successResponse{data=RegisterAuthenticatorResponse} "Registration result"
// @Failure 400 {object} router.errorResponse "Invalid body or signature"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/authenticator/register [post]
func (h *HTTPEndpoint) RegisterAuthenticator(r *router.Request) (any, error) {
	var req RegisterAuthenticatorRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RegisterAuthenticator(r.Context(), usecase.RegisterAuthenticatorInput{
		PubKey:    req.PubKey.input(),
		Sig:       req.Sig.input(),
		SecretKey: req.SecretKey,
	})
	if err != nil {
		return nil, err
	}

	return RegisterAuthenticatorResponse{
		Success:    resp.Success,
		Registered: resp.Registered,
		Secret:     resp.Secret,
		QRData:     resp.QRData,
	}, nil
}

// VerifyAuthenticator checks a TOTP code and returns the recovery data of the address.
// @Summary Verify authenticator code
// @Tags Recovery, Authenticator
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verify payload"
// @Success 200 {object} router.successResponse{data=VerifyResponse} "Stored recovery data"
// @Failure 400 {object} router.errorResponse "Unknown address"
// @Failure 403 {object} router.errorResponse "Invalid code"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/authenticator/verify [post]
func (h *HTTPEndpoint) VerifyAuthenticator(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyAuthenticator(r.Context(), usecase.VerifyAuthenticatorInput{
		Address: req.Address,
		Code:    req.Code,
		Data:    req.Data,
	})
	if err != nil {
		return nil, err
	}

	return VerifyResponse{Data: resp.Data}, nil
}

// DeleteAuthenticator soft deletes the verified authenticator of the signing key.
// @Summary Delete authenticator
// @Description The signature covers "delete:" followed by the address.
// @Tags Recovery, Authenticator
// @Accept json
// @Produce json
// @Param request body DeleteAuthenticatorRequest true "Delete payload"
// @Success 200 {object} router.successResponse{data=DeleteAuthenticatorResponse} "Deleted"
// @Failure 400 {object} router.errorResponse "Invalid signature or unknown address"
// @Failure 409 {object} router.errorResponse "Authenticator is not verified"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/authenticator/delete [post]
func (h *HTTPEndpoint) DeleteAuthenticator(r *router.Request) (any, error) {
	var req DeleteAuthenticatorRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.DeleteAuthenticator(r.Context(), usecase.DeleteAuthenticatorInput{
		PubKey: req.PubKey.input(),
		Sig:    req.Sig.input(),
	})
	if err != nil {
		return nil, err
	}

	return DeleteAuthenticatorResponse{Success: resp.Success}, nil
}
