package client

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/pkg/utils"
)

// TransactionPage is one page of the caller's history.
type TransactionPage struct {
	Transactions []*entities.Transaction `json:"transactions"`
	Pagination   utils.PaginationMeta    `json:"pagination"`
}

// ProfilePage is one page of the admin profile list.
type ProfilePage struct {
	Profiles   []*entities.Profile  `json:"profiles"`
	Pagination utils.PaginationMeta `json:"pagination"`
}

// KYCResult is returned by a submission.
type KYCResult struct {
	KYC     *entities.KYCDetails `json:"kyc"`
	Profile *entities.Profile    `json:"profile"`
	Message string               `json:"message"`
}

// CreatedTicket is a new ticket with its first message.
type CreatedTicket struct {
	Ticket  *entities.SupportTicket `json:"ticket"`
	Message *entities.TicketMessage `json:"message"`
	Notice  string                  `json:"notice"`
}

// ProfileUpdate is the answer to an admin write.
type ProfileUpdate struct {
	Profile *entities.Profile `json:"profile"`
	Message string            `json:"message"`
}

// UploadFile is a document read into memory.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (c *Client) storeAuth(resp *entities.AuthResponse) {
	c.SetCredentials(Credentials{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		SessionID:    resp.SessionID,
	})
}

func (c *Client) Signup(ctx context.Context, input entities.SignupInput) (*entities.AuthResponse, error) {
	var out entities.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/signup", input, &out); err != nil {
		return nil, err
	}
	c.storeAuth(&out)
	return &out, nil
}

func (c *Client) Login(ctx context.Context, input entities.LoginInput) (*entities.AuthResponse, error) {
	var out entities.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", input, &out); err != nil {
		return nil, err
	}
	c.storeAuth(&out)
	return &out, nil
}

// Refresh trades the stored refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context) error {
	creds := c.Credentials()
	var out struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	body := map[string]string{"refreshToken": creds.RefreshToken}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", body, &out); err != nil {
		return err
	}
	creds.AccessToken = out.AccessToken
	creds.RefreshToken = out.RefreshToken
	c.SetCredentials(creds)
	return nil
}

// Logout ends the server session, if any, and forgets local credentials.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
	c.SetCredentials(Credentials{})
	return err
}

func (c *Client) User(ctx context.Context) (*entities.Identity, error) {
	var out struct {
		User *entities.Identity `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/user", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Profile returns the caller's profile, or nil when there is no row.
func (c *Client) Profile(ctx context.Context) (*entities.Profile, error) {
	var out struct {
		Profile *entities.Profile `json:"profile"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/profile", nil, &out)
	if IsStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out.Profile, nil
}

func (c *Client) Transactions(ctx context.Context, page, limit int) (*TransactionPage, error) {
	var out TransactionPage
	req := c.request(ctx).SetResult(&out)
	setPage(req, page, limit)
	resp, err := req.Get("/api/v1/transactions")
	if err != nil {
		return nil, err
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DepositAssets(ctx context.Context) ([]entities.DepositAsset, error) {
	var out struct {
		Assets []entities.DepositAsset `json:"assets"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/deposit/assets", nil, &out); err != nil {
		return nil, err
	}
	return out.Assets, nil
}

func (c *Client) DepositAsset(ctx context.Context, code string) (*entities.DepositAsset, error) {
	var out struct {
		Asset entities.DepositAsset `json:"asset"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/deposit/assets/"+code, nil, &out); err != nil {
		return nil, err
	}
	return &out.Asset, nil
}

// DepositQR returns the PNG encoding of an asset's receiving address.
func (c *Client) DepositQR(ctx context.Context, code string, size int) ([]byte, error) {
	req := c.request(ctx)
	if size > 0 {
		req.SetQueryParam("size", strconv.Itoa(size))
	}
	resp, err := req.Get("/api/v1/deposit/assets/" + code + "/qr")
	if err != nil {
		return nil, err
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// Withdraw submits a request. An empty key gets a fresh one so a retried
// call cannot debit twice.
// WithdrawalLimits returns the server's withdrawal bounds.
func (c *Client) WithdrawalLimits(ctx context.Context) (*entities.WithdrawalLimits, error) {
	var out struct {
		Limits entities.WithdrawalLimits `json:"limits"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/withdrawals/limits", nil, &out); err != nil {
		return nil, err
	}
	return &out.Limits, nil
}

func (c *Client) Withdraw(ctx context.Context, input entities.WithdrawInput, idempotencyKey string) (*entities.WithdrawResult, error) {
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	var out entities.WithdrawResult
	resp, err := c.request(ctx).
		SetHeader(idempotencyHeader, idempotencyKey).
		SetBody(input).
		SetResult(&out).
		Post("/api/v1/withdrawals")
	if err != nil {
		return nil, err
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitKYC(ctx context.Context, form entities.KYCForm, front, back UploadFile) (*KYCResult, error) {
	var out KYCResult
	resp, err := c.request(ctx).
		SetMultipartFormData(map[string]string{
			"fullLegalName": form.FullLegalName,
			"dob":           form.DOB,
			"idNumber":      form.IDNumber,
			"country":       form.Country,
			"address":       form.Address,
			"city":          form.City,
			"postalCode":    form.PostalCode,
		}).
		SetMultipartField("documentFront", front.Name, front.ContentType, bytes.NewReader(front.Data)).
		SetMultipartField("documentBack", back.Name, back.ContentType, bytes.NewReader(back.Data)).
		SetResult(&out).
		Post("/api/v1/kyc")
	if err != nil {
		return nil, err
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) KYC(ctx context.Context) (*entities.KYCDetails, error) {
	var out struct {
		KYC *entities.KYCDetails `json:"kyc"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/kyc", nil, &out); err != nil {
		return nil, err
	}
	return out.KYC, nil
}

func (c *Client) Tickets(ctx context.Context) ([]*entities.SupportTicket, error) {
	var out struct {
		Tickets []*entities.SupportTicket `json:"tickets"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/tickets", nil, &out); err != nil {
		return nil, err
	}
	return out.Tickets, nil
}

func (c *Client) CreateTicket(ctx context.Context, input entities.CreateTicketInput) (*CreatedTicket, error) {
	var out CreatedTicket
	if err := c.do(ctx, http.MethodPost, "/api/v1/tickets", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TicketMessages(ctx context.Context, ticketID uuid.UUID) ([]*entities.TicketMessage, error) {
	var out struct {
		Messages []*entities.TicketMessage `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/tickets/"+ticketID.String()+"/messages", nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *Client) PostMessage(ctx context.Context, ticketID uuid.UUID, message string) (*entities.TicketMessage, error) {
	var out struct {
		Message *entities.TicketMessage `json:"message"`
	}
	body := entities.PostMessageInput{Message: message}
	if err := c.do(ctx, http.MethodPost, "/api/v1/tickets/"+ticketID.String()+"/messages", body, &out); err != nil {
		return nil, err
	}
	return out.Message, nil
}

func (c *Client) MarketMovers(ctx context.Context) (*entities.MarketMovers, error) {
	var out entities.MarketMovers
	if err := c.do(ctx, http.MethodGet, "/api/v1/market/movers", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Admin endpoints

func (c *Client) AdminProfiles(ctx context.Context, page, limit int) (*ProfilePage, error) {
	var out ProfilePage
	req := c.request(ctx).SetResult(&out)
	setPage(req, page, limit)
	resp, err := req.Get("/api/v1/admin/profiles")
	if err != nil {
		return nil, err
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminSetBalance(ctx context.Context, profileID uuid.UUID, balance decimal.Decimal) (*ProfileUpdate, error) {
	var out ProfileUpdate
	body := map[string]decimal.Decimal{"balance": balance}
	if err := c.do(ctx, http.MethodPut, "/api/v1/admin/profiles/"+profileID.String()+"/balance", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminSetKYCStatus(ctx context.Context, profileID uuid.UUID, status entities.KYCStatus) (*ProfileUpdate, error) {
	var out ProfileUpdate
	body := entities.UpdateKYCStatusInput{Status: status}
	if err := c.do(ctx, http.MethodPut, "/api/v1/admin/profiles/"+profileID.String()+"/kyc-status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminKYC(ctx context.Context, profileID uuid.UUID) (*entities.KYCDetails, error) {
	var out struct {
		KYC *entities.KYCDetails `json:"kyc"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/admin/profiles/"+profileID.String()+"/kyc", nil, &out); err != nil {
		return nil, err
	}
	return out.KYC, nil
}

func (c *Client) AdminTickets(ctx context.Context) ([]*entities.SupportTicket, error) {
	var out struct {
		Tickets []*entities.SupportTicket `json:"tickets"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/admin/tickets", nil, &out); err != nil {
		return nil, err
	}
	return out.Tickets, nil
}

func (c *Client) AdminTicketMessages(ctx context.Context, ticketID uuid.UUID) ([]*entities.TicketMessage, error) {
	var out struct {
		Messages []*entities.TicketMessage `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/admin/tickets/"+ticketID.String()+"/messages", nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *Client) AdminReply(ctx context.Context, ticketID uuid.UUID, message string) (*entities.TicketMessage, error) {
	var out struct {
		Message *entities.TicketMessage `json:"message"`
	}
	body := entities.PostMessageInput{Message: message}
	if err := c.do(ctx, http.MethodPost, "/api/v1/admin/tickets/"+ticketID.String()+"/messages", body, &out); err != nil {
		return nil, err
	}
	return out.Message, nil
}

func (c *Client) AdminStats(ctx context.Context) (*entities.AdminStats, error) {
	var out entities.AdminStats
	if err := c.do(ctx, http.MethodGet, "/api/v1/admin/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func setPage(req *resty.Request, page, limit int) {
	if page > 0 {
		req.SetQueryParam("page", strconv.Itoa(page))
	}
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
}
