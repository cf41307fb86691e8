// Package models defines the core domain models of the payment ledger.
//
// # Models
//
//   - Merchant: an account receiving payments, with its FinancialTerms
//   - Transaction: one payment event and its undisbursed balance
//   - ScheduledTask: deferred settlement of one completed transaction
//   - SettlementReport: per merchant, per day aggregate of settled payments
//   - Disbursement: money paid out to a merchant
//
// # Money
//
// Amounts are decimal.Decimal values with two places. The store keeps them as
// integer minor units and converts at its boundary; nothing in this package
// uses floating point for money.
//
// # Relationships
//
// Relationships are expressed with IDs rather than pointers: a Transaction
// carries its MerchantID, a ScheduledTask its TransactionID. Wallet balances
// are never stored; they are summed from transaction balances on demand.
package models
