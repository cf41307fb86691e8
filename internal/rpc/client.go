package rpc

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/paygate/internal/models"
	"github.com/mmynk/paygate/internal/service"
)

// Client calls the ledger procedures.
type Client struct {
	getWalletBalance        *connect.Client[MerchantRequest, models.WalletBalance]
	getWalletBalanceByUID   *connect.Client[MerchantUIDRequest, models.WalletBalance]
	getEligibleTransactions *connect.Client[MerchantRequest, EligibleTransactionsResponse]
	getMerchantCommission   *connect.Client[MerchantRequest, CommissionResponse]
	disburse                *connect.Client[DisburseRequest, DisburseResponse]
	getDisbursedTotal       *connect.Client[DisbursedTotalRequest, DisbursedTotalResponse]
	adjustWalletBalance     *connect.Client[AdjustWalletBalanceRequest, service.AdjustmentResult]
	divideSettlementRecords *connect.Client[DivideSettlementRecordsRequest, DivideSettlementRecordsResponse]
	initiatePayment         *connect.Client[InitiatePaymentRequest, Transaction]
	providerCallback        *connect.Client[ProviderCallbackRequest, Transaction]
}

// NewClient creates a client for the ledger service at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)

	return &Client{
		getWalletBalance:        connect.NewClient[MerchantRequest, models.WalletBalance](httpClient, baseURL+GetWalletBalanceProcedure, opts...),
		getWalletBalanceByUID:   connect.NewClient[MerchantUIDRequest, models.WalletBalance](httpClient, baseURL+GetWalletBalanceByUIDProcedure, opts...),
		getEligibleTransactions: connect.NewClient[MerchantRequest, EligibleTransactionsResponse](httpClient, baseURL+GetEligibleTransactionsProcedure, opts...),
		getMerchantCommission:   connect.NewClient[MerchantRequest, CommissionResponse](httpClient, baseURL+GetMerchantCommissionProcedure, opts...),
		disburse:                connect.NewClient[DisburseRequest, DisburseResponse](httpClient, baseURL+DisburseProcedure, opts...),
		getDisbursedTotal:       connect.NewClient[DisbursedTotalRequest, DisbursedTotalResponse](httpClient, baseURL+GetDisbursedTotalProcedure, opts...),
		adjustWalletBalance:     connect.NewClient[AdjustWalletBalanceRequest, service.AdjustmentResult](httpClient, baseURL+AdjustWalletBalanceProcedure, opts...),
		divideSettlementRecords: connect.NewClient[DivideSettlementRecordsRequest, DivideSettlementRecordsResponse](httpClient, baseURL+DivideSettlementRecordsProcedure, opts...),
		initiatePayment:         connect.NewClient[InitiatePaymentRequest, Transaction](httpClient, baseURL+InitiatePaymentProcedure, opts...),
		providerCallback:        connect.NewClient[ProviderCallbackRequest, Transaction](httpClient, baseURL+ProviderCallbackProcedure, opts...),
	}
}

// BearerToken returns a client interceptor that sends token on every call.
func BearerToken(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token != "" {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}

func (c *Client) GetWalletBalance(ctx context.Context, req *connect.Request[MerchantRequest]) (*connect.Response[models.WalletBalance], error) {
	return c.getWalletBalance.CallUnary(ctx, req)
}

func (c *Client) GetWalletBalanceByUID(ctx context.Context, req *connect.Request[MerchantUIDRequest]) (*connect.Response[models.WalletBalance], error) {
	return c.getWalletBalanceByUID.CallUnary(ctx, req)
}

func (c *Client) GetEligibleTransactions(ctx context.Context, req *connect.Request[MerchantRequest]) (*connect.Response[EligibleTransactionsResponse], error) {
	return c.getEligibleTransactions.CallUnary(ctx, req)
}

func (c *Client) GetMerchantCommission(ctx context.Context, req *connect.Request[MerchantRequest]) (*connect.Response[CommissionResponse], error) {
	return c.getMerchantCommission.CallUnary(ctx, req)
}

func (c *Client) Disburse(ctx context.Context, req *connect.Request[DisburseRequest]) (*connect.Response[DisburseResponse], error) {
	return c.disburse.CallUnary(ctx, req)
}

func (c *Client) GetDisbursedTotal(ctx context.Context, req *connect.Request[DisbursedTotalRequest]) (*connect.Response[DisbursedTotalResponse], error) {
	return c.getDisbursedTotal.CallUnary(ctx, req)
}

func (c *Client) AdjustWalletBalance(ctx context.Context, req *connect.Request[AdjustWalletBalanceRequest]) (*connect.Response[service.AdjustmentResult], error) {
	return c.adjustWalletBalance.CallUnary(ctx, req)
}

func (c *Client) DivideSettlementRecords(ctx context.Context, req *connect.Request[DivideSettlementRecordsRequest]) (*connect.Response[DivideSettlementRecordsResponse], error) {
	return c.divideSettlementRecords.CallUnary(ctx, req)
}

func (c *Client) InitiatePayment(ctx context.Context, req *connect.Request[InitiatePaymentRequest]) (*connect.Response[Transaction], error) {
	return c.initiatePayment.CallUnary(ctx, req)
}

func (c *Client) ProviderCallback(ctx context.Context, req *connect.Request[ProviderCallbackRequest]) (*connect.Response[Transaction], error) {
	return c.providerCallback.CallUnary(ctx, req)
}
