package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"eventgo-ticketing/config"
	"eventgo-ticketing/internal/model"
	apperrors "eventgo-ticketing/pkg/app_errors"
	"eventgo-ticketing/pkg/logger"

	"go.uber.org/zap"
)

const (
	momoCreatePath  = "/v2/gateway/api/create"
	momoQueryPath   = "/v2/gateway/api/query"
	momoRequestType = "captureWallet"

	// MoMo resultCode
	momoResultSuccess = 0
	momoResultPending = 1000
)

// MoMoGateway 透過 MoMo 錢包收款的 Gateway 實作
type MoMoGateway struct {
	cfg config.PaymentConfig
	hc  *http.Client
	log *zap.Logger
}

func NewMoMoGateway(cfg config.PaymentConfig) Gateway {
	return &MoMoGateway{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.Timeout},
		log: logger.WithComponent("momo"),
	}
}

type momoCreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	AccessKey   string `json:"accessKey"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	Lang        string `json:"lang"`
	ExtraData   string `json:"extraData"`
	RequestType string `json:"requestType"`
	Signature   string `json:"signature"`
}

type momoCreateResponse struct {
	PayURL     string `json:"payUrl"`
	QRCodeURL  string `json:"qrCodeUrl"`
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
}

type momoWebhookPayload struct {
	OrderID    string `json:"orderId"`
	RequestID  string `json:"requestId"`
	ResultCode *int   `json:"resultCode"`
	Message    string `json:"message"`
}

type momoQueryRequest struct {
	PartnerCode string `json:"partnerCode"`
	AccessKey   string `json:"accessKey"`
	RequestID   string `json:"requestId"`
	OrderID     string `json:"orderId"`
	Lang        string `json:"lang"`
	Signature   string `json:"signature"`
}

type momoQueryResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
}

// sign HMAC-SHA256 over the canonical key=value string, hex encoded
func (g *MoMoGateway) sign(raw string) string {
	mac := hmac.New(sha256.New, []byte(g.cfg.SecretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

func (g *MoMoGateway) CreateCharge(ctx context.Context, order *model.Order) (*Charge, error) {
	orderRef := FormatOrderRef(order.BuyerID, order.ID)
	requestID := "REQ_" + orderRef
	amount := order.TotalAmount.IntPart()
	orderInfo := fmt.Sprintf("Thanh toan don hang %s", orderRef)

	raw := fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		g.cfg.AccessKey, amount, g.cfg.IPNURL, orderRef, orderInfo,
		g.cfg.PartnerCode, g.cfg.RedirectURL, requestID, momoRequestType,
	)

	req := momoCreateRequest{
		PartnerCode: g.cfg.PartnerCode,
		AccessKey:   g.cfg.AccessKey,
		RequestID:   requestID,
		Amount:      amount,
		OrderID:     orderRef,
		OrderInfo:   orderInfo,
		RedirectURL: g.cfg.RedirectURL,
		IPNURL:      g.cfg.IPNURL,
		Lang:        "vi",
		ExtraData:   "",
		RequestType: momoRequestType,
		Signature:   g.sign(raw),
	}

	var resp momoCreateResponse
	if err := g.post(ctx, momoCreatePath, req, &resp); err != nil {
		return nil, err
	}

	if resp.ResultCode != momoResultSuccess {
		g.log.Warn("create charge declined",
			zap.String("order_ref", orderRef),
			zap.Int("result_code", resp.ResultCode),
			zap.String("message", resp.Message))
		return nil, apperrors.ErrGatewayDeclined
	}

	return &Charge{
		PayURL:   resp.PayURL,
		QRTarget: resp.QRCodeURL,
		OrderRef: orderRef,
	}, nil
}

// VerifySignature 驗證 IPN 簽章：HMAC-SHA256(secret, raw payload)
func (g *MoMoGateway) VerifySignature(payload []byte, signature string) bool {
	expected := g.sign(string(payload))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (g *MoMoGateway) ParseWebhookResult(payload []byte) (*WebhookResult, error) {
	var p momoWebhookPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, apperrors.ErrInvalidInput
	}
	if p.OrderID == "" || p.RequestID == "" || p.ResultCode == nil {
		return nil, apperrors.ErrInvalidInput
	}

	return &WebhookResult{
		OrderRef:  p.OrderID,
		Succeeded: *p.ResultCode == momoResultSuccess,
		Message:   p.Message,
	}, nil
}

func (g *MoMoGateway) QueryStatus(ctx context.Context, orderRef string) (*StatusResult, error) {
	requestID := "REQ_" + orderRef
	raw := fmt.Sprintf("accessKey=%s&orderId=%s&partnerCode=%s&requestId=%s",
		g.cfg.AccessKey, orderRef, g.cfg.PartnerCode, requestID)

	req := momoQueryRequest{
		PartnerCode: g.cfg.PartnerCode,
		AccessKey:   g.cfg.AccessKey,
		RequestID:   requestID,
		OrderID:     orderRef,
		Lang:        "vi",
		Signature:   g.sign(raw),
	}

	var resp momoQueryResponse
	if err := g.post(ctx, momoQueryPath, req, &resp); err != nil {
		return nil, err
	}

	return &StatusResult{
		Succeeded: resp.ResultCode == momoResultSuccess,
		Pending:   resp.ResultCode == momoResultPending,
		Message:   resp.Message,
	}, nil
}

func (g *MoMoGateway) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal momo request: %w", err)
	}

	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint+path, bytes.NewBuffer(buf))
	if err != nil {
		return fmt.Errorf("build momo request: %w", err)
	}
	hr.Header.Set("Content-Type", "application/json")

	resp, err := g.hc.Do(hr)
	if err != nil {
		// 含逾時：單次嘗試失敗，呼叫端可整筆重試
		return fmt.Errorf("call momo %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read momo response: %w", err)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode momo response: %w", err)
	}
	return nil
}
