package inter

import "fmt"

// ResponseCode is the status a consensus node reports for a transaction.
type ResponseCode uint16

const (
	StatusOK                                 ResponseCode = 0
	StatusInvalidTransaction                 ResponseCode = 1
	StatusPayerAccountNotFound               ResponseCode = 2
	StatusInsufficientPayerBalance           ResponseCode = 10
	StatusInvalidSignature                   ResponseCode = 7
	StatusDuplicateTransaction               ResponseCode = 11
	StatusSuccess                            ResponseCode = 22
	StatusFailInvalid                        ResponseCode = 23
	StatusInvalidAccountID                   ResponseCode = 15
	StatusContractRevertExecuted             ResponseCode = 33
	StatusInsufficientGas                    ResponseCode = 30
	StatusInvalidTopicID                     ResponseCode = 150
	StatusInvalidTokenID                     ResponseCode = 167
	StatusInvalidScheduleID                  ResponseCode = 201
	StatusIdenticalScheduleAlreadyCreated    ResponseCode = 208
	StatusScheduleAlreadyExecuted            ResponseCode = 212
	StatusFeeScheduleFilePartUploaded        ResponseCode = 104
	StatusSuccessButMissingExpectedOperation ResponseCode = 220
	StatusInnerTransactionFailed             ResponseCode = 382
	StatusBatchTransactionInBlacklist        ResponseCode = 383
)

var responseCodeNames = map[ResponseCode]string{
	StatusOK:                                 "OK",
	StatusInvalidTransaction:                 "INVALID_TRANSACTION",
	StatusPayerAccountNotFound:               "PAYER_ACCOUNT_NOT_FOUND",
	StatusInsufficientPayerBalance:           "INSUFFICIENT_PAYER_BALANCE",
	StatusInvalidSignature:                   "INVALID_SIGNATURE",
	StatusDuplicateTransaction:               "DUPLICATE_TRANSACTION",
	StatusSuccess:                            "SUCCESS",
	StatusFailInvalid:                        "FAIL_INVALID",
	StatusInvalidAccountID:                   "INVALID_ACCOUNT_ID",
	StatusContractRevertExecuted:             "CONTRACT_REVERT_EXECUTED",
	StatusInsufficientGas:                    "INSUFFICIENT_GAS",
	StatusInvalidTopicID:                     "INVALID_TOPIC_ID",
	StatusInvalidTokenID:                     "INVALID_TOKEN_ID",
	StatusInvalidScheduleID:                  "INVALID_SCHEDULE_ID",
	StatusIdenticalScheduleAlreadyCreated:    "IDENTICAL_SCHEDULE_ALREADY_CREATED",
	StatusScheduleAlreadyExecuted:            "SCHEDULE_ALREADY_EXECUTED",
	StatusFeeScheduleFilePartUploaded:        "FEE_SCHEDULE_FILE_PART_UPLOADED",
	StatusSuccessButMissingExpectedOperation: "SUCCESS_BUT_MISSING_EXPECTED_OPERATION",
	StatusInnerTransactionFailed:             "INNER_TRANSACTION_FAILED",
	StatusBatchTransactionInBlacklist:        "BATCH_TRANSACTION_IN_BLACKLIST",
}

// IsSuccessful reports whether the transaction changed ledger state as
// requested. Partial uploads of the fee schedule count as success.
func (c ResponseCode) IsSuccessful() bool {
	switch c {
	case StatusSuccess, StatusFeeScheduleFilePartUploaded, StatusSuccessButMissingExpectedOperation:
		return true
	}
	return false
}

func (c ResponseCode) String() string {
	if name, ok := responseCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ResponseCode(%d)", uint16(c))
}
