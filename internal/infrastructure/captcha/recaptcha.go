// Package captcha verificación de tokens reCAPTCHA v3 del formulario público de leads.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultVerifyURL endpoint de verificación de Google.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Verifier implementa crm.CaptchaVerifier contra la API siteverify.
type Verifier struct {
	secret    string
	minScore  float64
	verifyURL string
	client    *http.Client
	log       zerolog.Logger
}

// NewVerifier construye el verificador. minScore aplica solo a tokens v3 (los v2 no traen score).
func NewVerifier(secret string, minScore float64, log zerolog.Logger) *Verifier {
	return &Verifier{
		secret:    secret,
		minScore:  minScore,
		verifyURL: DefaultVerifyURL,
		client:    &http.Client{Timeout: 5 * time.Second},
		log:       log.With().Str("component", "captcha").Logger(),
	}
}

type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify devuelve false si el token es vacío, inválido o su score es menor al mínimo.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, nil
	}
	form := url.Values{"secret": {v.secret}, "response": {token}}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("captcha: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("captcha: siteverify: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("captcha: siteverify status %d", resp.StatusCode)
	}
	var out siteVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("captcha: decodificar respuesta: %w", err)
	}
	if !out.Success {
		v.log.Debug().Strs("errors", out.ErrorCodes).Msg("token rechazado")
		return false, nil
	}
	if out.Score != nil && *out.Score < v.minScore {
		v.log.Debug().Float64("score", *out.Score).Msg("score por debajo del mínimo")
		return false, nil
	}
	return true, nil
}
