// Package rpc exposes the ledger services over Connect with a JSON codec.
package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/paygate/internal/apperr"
	"github.com/mmynk/paygate/internal/models"
	"github.com/mmynk/paygate/internal/provider"
	"github.com/mmynk/paygate/internal/service"
	"github.com/mmynk/paygate/internal/storage"
)

// ServiceName is the fully-qualified name of the ledger service.
const ServiceName = "paygate.v1.LedgerService"

// Procedure paths.
const (
	GetWalletBalanceProcedure        = "/" + ServiceName + "/GetWalletBalance"
	GetWalletBalanceByUIDProcedure   = "/" + ServiceName + "/GetWalletBalanceByUID"
	GetEligibleTransactionsProcedure = "/" + ServiceName + "/GetEligibleTransactions"
	GetMerchantCommissionProcedure   = "/" + ServiceName + "/GetMerchantCommission"
	DisburseProcedure                = "/" + ServiceName + "/Disburse"
	GetDisbursedTotalProcedure       = "/" + ServiceName + "/GetDisbursedTotal"
	AdjustWalletBalanceProcedure     = "/" + ServiceName + "/AdjustWalletBalance"
	DivideSettlementRecordsProcedure = "/" + ServiceName + "/DivideSettlementRecords"
	InitiatePaymentProcedure         = "/" + ServiceName + "/InitiatePayment"
	ProviderCallbackProcedure        = "/" + ServiceName + "/ProviderCallback"
)

// AdminProcedures move money by hand and need an admin operator token.
var AdminProcedures = []string{
	DisburseProcedure,
	AdjustWalletBalanceProcedure,
	DivideSettlementRecordsProcedure,
}

// ProviderProcedures move a payment's status and need a provider token.
var ProviderProcedures = []string{
	ProviderCallbackProcedure,
}

// Services are the ledger services the handler dispatches to.
type Services struct {
	Commission    *service.CommissionService
	Wallet        *service.WalletService
	Disbursements *service.DisbursementService
	Adjustments   *service.AdjustmentService
	Transactions  *service.TransactionService
	Reports       *service.ReportService
}

// LedgerServer implements the ledger procedures.
type LedgerServer struct {
	svc Services
}

// NewHandler builds the HTTP handler for every ledger procedure and returns
// the path prefix to mount it on.
func NewHandler(svc Services, opts ...connect.HandlerOption) (string, http.Handler) {
	s := &LedgerServer{svc: svc}
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(GetWalletBalanceProcedure, connect.NewUnaryHandler(GetWalletBalanceProcedure, s.GetWalletBalance, opts...))
	mux.Handle(GetWalletBalanceByUIDProcedure, connect.NewUnaryHandler(GetWalletBalanceByUIDProcedure, s.GetWalletBalanceByUID, opts...))
	mux.Handle(GetEligibleTransactionsProcedure, connect.NewUnaryHandler(GetEligibleTransactionsProcedure, s.GetEligibleTransactions, opts...))
	mux.Handle(GetMerchantCommissionProcedure, connect.NewUnaryHandler(GetMerchantCommissionProcedure, s.GetMerchantCommission, opts...))
	mux.Handle(DisburseProcedure, connect.NewUnaryHandler(DisburseProcedure, s.Disburse, opts...))
	mux.Handle(GetDisbursedTotalProcedure, connect.NewUnaryHandler(GetDisbursedTotalProcedure, s.GetDisbursedTotal, opts...))
	mux.Handle(AdjustWalletBalanceProcedure, connect.NewUnaryHandler(AdjustWalletBalanceProcedure, s.AdjustWalletBalance, opts...))
	mux.Handle(DivideSettlementRecordsProcedure, connect.NewUnaryHandler(DivideSettlementRecordsProcedure, s.DivideSettlementRecords, opts...))
	mux.Handle(InitiatePaymentProcedure, connect.NewUnaryHandler(InitiatePaymentProcedure, s.InitiatePayment, opts...))
	mux.Handle(ProviderCallbackProcedure, connect.NewUnaryHandler(ProviderCallbackProcedure, s.ProviderCallback, opts...))

	return "/" + ServiceName + "/", mux
}

func (s *LedgerServer) GetWalletBalance(ctx context.Context, req *connect.Request[MerchantRequest]) (*connect.Response[models.WalletBalance], error) {
	bal, err := s.svc.Wallet.GetWalletBalance(ctx, req.Msg.MerchantID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(bal), nil
}

func (s *LedgerServer) GetWalletBalanceByUID(ctx context.Context, req *connect.Request[MerchantUIDRequest]) (*connect.Response[models.WalletBalance], error) {
	bal, err := s.svc.Wallet.GetWalletBalanceByUID(ctx, req.Msg.UID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(bal), nil
}

func (s *LedgerServer) GetEligibleTransactions(ctx context.Context, req *connect.Request[MerchantRequest]) (*connect.Response[EligibleTransactionsResponse], error) {
	txns, err := s.svc.Disbursements.GetEligibleTransactions(ctx, req.Msg.MerchantID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if txns == nil {
		txns = []models.EligibleTransaction{}
	}
	return connect.NewResponse(&EligibleTransactionsResponse{Transactions: txns}), nil
}

func (s *LedgerServer) GetMerchantCommission(ctx context.Context, req *connect.Request[MerchantRequest]) (*connect.Response[CommissionResponse], error) {
	commission, err := s.svc.Commission.GetMerchantCommission(ctx, req.Msg.MerchantID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CommissionResponse{Commission: commission}), nil
}

func (s *LedgerServer) Disburse(ctx context.Context, req *connect.Request[DisburseRequest]) (*connect.Response[DisburseResponse], error) {
	res, err := s.svc.Disbursements.Disburse(ctx, req.Msg.MerchantID, req.Msg.Amount, req.Msg.Notes)
	if err != nil {
		return nil, toConnectError(err)
	}

	d := res.Disbursement
	return connect.NewResponse(&DisburseResponse{
		DisbursementID: d.ID,
		Amount:         d.Amount,
		Commission:     d.Commission,
		GST:            d.GST,
		WithholdingTax: d.WithholdingTax,
		MerchantAmount: d.MerchantAmount,
		Updates:        res.Updates,
	}), nil
}

func (s *LedgerServer) GetDisbursedTotal(ctx context.Context, req *connect.Request[DisbursedTotalRequest]) (*connect.Response[DisbursedTotalResponse], error) {
	var window *storage.TimeRange
	switch {
	case req.Msg.From != nil && req.Msg.To != nil:
		window = &storage.TimeRange{From: *req.Msg.From, To: *req.Msg.To}
	case req.Msg.From != nil || req.Msg.To != nil:
		return nil, toConnectError(apperr.Invalid("Both from and to are required"))
	}

	total, err := s.svc.Disbursements.GetDisbursedTotal(ctx, req.Msg.MerchantID, window)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DisbursedTotalResponse{Total: total}), nil
}

func (s *LedgerServer) AdjustWalletBalance(ctx context.Context, req *connect.Request[AdjustWalletBalanceRequest]) (*connect.Response[service.AdjustmentResult], error) {
	var (
		res *service.AdjustmentResult
		err error
	)
	if req.Msg.Record {
		res, err = s.svc.Adjustments.AdjustMerchantWalletBalance(ctx, req.Msg.MerchantID, req.Msg.TargetBalance, true, req.Msg.Notes)
	} else {
		res, err = s.svc.Adjustments.AdjustMerchantWalletBalanceWithoutSettlement(ctx, req.Msg.MerchantID, req.Msg.TargetBalance)
	}
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(res), nil
}

func (s *LedgerServer) DivideSettlementRecords(ctx context.Context, req *connect.Request[DivideSettlementRecordsRequest]) (*connect.Response[DivideSettlementRecordsResponse], error) {
	reports, err := s.svc.Reports.DivideSettlementRecords(ctx, req.Msg.IDs, req.Msg.Factor)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]SettlementReport, len(reports))
	for i, r := range reports {
		out[i] = reportFromModel(r)
	}
	return connect.NewResponse(&DivideSettlementRecordsResponse{Reports: out}), nil
}

func (s *LedgerServer) InitiatePayment(ctx context.Context, req *connect.Request[InitiatePaymentRequest]) (*connect.Response[Transaction], error) {
	txn, err := s.svc.Transactions.Initiate(ctx, service.Payment{
		MerchantID: req.Msg.MerchantID,
		Amount:     req.Msg.Amount,
		Type:       models.TransactionType(req.Msg.Type),
		Provider:   req.Msg.Provider,
		Phone:      req.Msg.Phone,
		Email:      req.Msg.Email,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(transactionFromModel(txn)), nil
}

func (s *LedgerServer) ProviderCallback(ctx context.Context, req *connect.Request[ProviderCallbackRequest]) (*connect.Response[Transaction], error) {
	var out provider.Outcome
	switch req.Msg.Result {
	case "ok":
		out = provider.Ok(req.Msg.Reference)
	case "err":
		out = provider.Err(req.Msg.Reference, req.Msg.Reason)
	case "pending":
		out = provider.Pending(req.Msg.Reference)
	default:
		return nil, toConnectError(apperr.Invalid("Unknown callback result %q", req.Msg.Result))
	}

	txn, err := s.svc.Transactions.HandleCallback(ctx, req.Msg.TransactionID, out)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(transactionFromModel(txn)), nil
}
