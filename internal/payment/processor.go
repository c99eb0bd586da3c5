// Package payment charges SAR amounts through a Saudi payment gateway after
// computing VAT and the ZATCA QR payload for the sale.
//
// Every failure is returned as an error; a Result is only produced when the
// gateway accepted the request. Validation errors are raised before any
// network call and gateway calls are never retried.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Nicolas4485/allam-demo-payment-integration/internal/vat"
	"github.com/Nicolas4485/allam-demo-payment-integration/internal/zatca"
	"github.com/Nicolas4485/allam-demo-payment-integration/pkg/utils"
)

// DefaultTimeout bounds a single gateway call
const DefaultTimeout = 10 * time.Second

// Config is the explicit configuration of a Processor. Credentials are
// injected here; the processor never reads the environment.
type Config struct {
	Moyasar GatewayConfig
	Tap     GatewayConfig
	Timeout time.Duration

	// DefaultSeller is used when a request carries no seller
	DefaultSeller Seller
}

// Recorder receives per-call payment metrics
type Recorder interface {
	ObservePayment(gateway, outcome string, duration time.Duration)
}

// Option customizes a Processor
type Option func(*Processor)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Processor) { p.logger = logger }
}

// WithClock replaces time.Now, for deterministic timestamps
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(p *Processor) { p.client = resty.NewWithClient(client) }
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(p *Processor) { p.recorder = r }
}

// Processor computes tax figures and submits charges
type Processor struct {
	gateways      map[string]Gateway
	defaultSeller Seller
	timeout       time.Duration
	client        *resty.Client
	validate      *validator.Validate
	now           func() time.Time
	recorder      Recorder
	logger        *zap.Logger
}

// NewProcessor creates a processor for the moyasar and tap gateways.
func NewProcessor(cfg Config, opts ...Option) *Processor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	p := &Processor{
		gateways: map[string]Gateway{
			GatewayMoyasar: newMoyasarGateway(cfg.Moyasar),
			GatewayTap:     newTapGateway(cfg.Tap),
		},
		defaultSeller: cfg.DefaultSeller,
		timeout:       timeout,
		client:        resty.New(),
		validate:      utils.NewValidator(),
		now:           time.Now,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.client.SetRetryCount(0)
	return p
}

// Gateway returns the named gateway or ErrUnsupportedGateway.
func (p *Processor) Gateway(name string) (Gateway, error) {
	gw, ok := p.gateways[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnsupportedGateway)
	}
	return gw, nil
}

// Quote computes VAT, the Riyadh timestamp and the QR payload without
// contacting any gateway.
func (p *Processor) Quote(req Request) (*Quote, error) {
	seller := req.Seller
	if seller == (Seller{}) {
		seller = p.defaultSeller
	}
	seller.Name = utils.SanitizeString(seller.Name)
	if err := p.validate.Struct(seller); err != nil {
		return nil, fmt.Errorf("%w: seller: %v", ErrInvalidRequest, err)
	}

	breakdown, err := vat.Compute(req.Subtotal)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	timestamp := zatca.FormatTimestamp(p.now())
	qr, err := zatca.Invoice{
		SellerName: seller.Name,
		VATNumber:  seller.VATNumber,
		Timestamp:  timestamp,
		Total:      vat.FormatAmount(breakdown.Total),
		VAT:        vat.FormatAmount(breakdown.VAT),
	}.QRCode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	return &Quote{
		Seller:        seller,
		Currency:      vat.Currency,
		Subtotal:      breakdown.Subtotal,
		VAT:           breakdown.VAT,
		Total:         breakdown.Total,
		AmountHalalas: breakdown.Halalas,
		Timestamp:     timestamp,
		QRCode:        qr,
	}, nil
}

// Process validates req, computes the quote and submits one charge to the
// selected gateway.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	gw, err := p.Gateway(req.Gateway)
	if err != nil {
		return nil, err
	}
	if !gw.HasCredential() {
		return nil, fmt.Errorf("%s: %w", gw.Name(), ErrMissingCredential)
	}
	if err := p.validateCharge(req); err != nil {
		return nil, err
	}

	quote, err := p.Quote(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	outcome, body, err := p.submit(ctx, gw, Charge{
		Quote:       quote,
		Description: utils.SanitizeString(req.Description),
		SourceToken: req.SourceToken,
		Metadata:    req.Metadata,
		Customer:    req.Customer,
	})
	elapsed := time.Since(start)

	if err != nil {
		p.observe(gw.Name(), "error", elapsed)
		p.logger.Error("Gateway charge failed",
			zap.String("gateway", gw.Name()),
			zap.String("total", vat.FormatAmount(quote.Total)),
			zap.Duration("latency", elapsed),
			zap.Error(err))
		return nil, err
	}

	result := &Result{
		Success:         !outcome.Declined,
		Gateway:         gw.Name(),
		ChargeID:        outcome.ChargeID,
		GatewayStatus:   outcome.Status,
		Currency:        quote.Currency,
		Subtotal:        quote.Subtotal,
		VAT:             quote.VAT,
		Total:           quote.Total,
		AmountHalalas:   quote.AmountHalalas,
		Timestamp:       quote.Timestamp,
		QRCode:          quote.QRCode,
		GatewayResponse: body,
	}

	outcomeLabel := "success"
	if outcome.Declined {
		outcomeLabel = "declined"
	}
	p.observe(gw.Name(), outcomeLabel, elapsed)

	p.logger.Info("Gateway charge completed",
		zap.String("gateway", gw.Name()),
		zap.String("charge_id", outcome.ChargeID),
		zap.String("status", outcome.Status),
		zap.String("total", vat.FormatAmount(quote.Total)),
		zap.Duration("latency", elapsed))

	return result, nil
}

func (p *Processor) validateCharge(req Request) error {
	if req.SourceToken == "" {
		return fmt.Errorf("%w: source_token is required", ErrInvalidRequest)
	}
	if req.Customer != nil {
		if err := p.validate.Struct(req.Customer); err != nil {
			return fmt.Errorf("%w: customer: %v", ErrInvalidRequest, err)
		}
	}
	return nil
}

// submit performs exactly one HTTP call.
func (p *Processor) submit(ctx context.Context, gw Gateway, charge Charge) (Outcome, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	r := p.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("X-Request-Id", uuid.NewString()).
		SetBody(gw.Payload(charge))
	gw.Authorize(r)

	resp, err := r.Post(gw.ChargeURL())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return Outcome{}, nil, &GatewayRequestError{Gateway: gw.Name(), Err: err}
	}

	body := resp.Body()
	if !resp.IsSuccess() {
		return Outcome{}, nil, &GatewayRequestError{
			Gateway:    gw.Name(),
			StatusCode: resp.StatusCode(),
			Message:    gatewayMessage(body),
		}
	}

	outcome, err := gw.ParseResponse(body)
	if err != nil {
		return Outcome{}, nil, &GatewayRequestError{
			Gateway:    gw.Name(),
			StatusCode: resp.StatusCode(),
			Message:    "unreadable response",
			Err:        err,
		}
	}
	return outcome, body, nil
}

func (p *Processor) observe(gateway, outcome string, d time.Duration) {
	if p.recorder != nil {
		p.recorder.ObservePayment(gateway, outcome, d)
	}
}
