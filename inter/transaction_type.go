package inter

import "fmt"

// TransactionType is the kind of a transaction body. Values are stable: they
// appear on the wire and in the database.
type TransactionType uint8

const (
	TxUnknown TransactionType = iota
	TxCryptoCreateAccount
	TxCryptoTransfer
	TxCryptoUpdateAccount
	TxCryptoDeleteAccount
	TxCryptoApproveAllowance
	TxCryptoDeleteAllowance
	TxContractCall
	TxContractCreate
	TxContractUpdate
	TxContractDelete
	TxEthereumTransaction
	TxConsensusCreateTopic
	TxConsensusUpdateTopic
	TxConsensusDeleteTopic
	TxConsensusSubmitMessage
	TxFileCreate
	TxFileAppend
	TxFileUpdate
	TxFileDelete
	TxTokenCreate
	TxTokenUpdate
	TxTokenDelete
	TxTokenMint
	TxTokenBurn
	TxTokenWipe
	TxTokenAssociate
	TxTokenDissociate
	TxTokenAirdrop
	TxScheduleCreate
	TxScheduleSign
	TxScheduleDelete
	TxNodeCreate
	TxNodeUpdate
	TxNodeDelete
	TxUtilPrng
	TxAtomicBatch
	TxFreeze

	txTypeCount
)

var transactionTypeNames = [...]string{
	TxUnknown:                "UNKNOWN",
	TxCryptoCreateAccount:    "CRYPTOCREATEACCOUNT",
	TxCryptoTransfer:         "CRYPTOTRANSFER",
	TxCryptoUpdateAccount:    "CRYPTOUPDATEACCOUNT",
	TxCryptoDeleteAccount:    "CRYPTODELETE",
	TxCryptoApproveAllowance: "CRYPTOAPPROVEALLOWANCE",
	TxCryptoDeleteAllowance:  "CRYPTODELETEALLOWANCE",
	TxContractCall:           "CONTRACTCALL",
	TxContractCreate:         "CONTRACTCREATEINSTANCE",
	TxContractUpdate:         "CONTRACTUPDATEINSTANCE",
	TxContractDelete:         "CONTRACTDELETEINSTANCE",
	TxEthereumTransaction:    "ETHEREUMTRANSACTION",
	TxConsensusCreateTopic:   "CONSENSUSCREATETOPIC",
	TxConsensusUpdateTopic:   "CONSENSUSUPDATETOPIC",
	TxConsensusDeleteTopic:   "CONSENSUSDELETETOPIC",
	TxConsensusSubmitMessage: "CONSENSUSSUBMITMESSAGE",
	TxFileCreate:             "FILECREATE",
	TxFileAppend:             "FILEAPPEND",
	TxFileUpdate:             "FILEUPDATE",
	TxFileDelete:             "FILEDELETE",
	TxTokenCreate:            "TOKENCREATION",
	TxTokenUpdate:            "TOKENUPDATE",
	TxTokenDelete:            "TOKENDELETION",
	TxTokenMint:              "TOKENMINT",
	TxTokenBurn:              "TOKENBURN",
	TxTokenWipe:              "TOKENWIPE",
	TxTokenAssociate:         "TOKENASSOCIATE",
	TxTokenDissociate:        "TOKENDISSOCIATE",
	TxTokenAirdrop:           "TOKENAIRDROP",
	TxScheduleCreate:         "SCHEDULECREATE",
	TxScheduleSign:           "SCHEDULESIGN",
	TxScheduleDelete:         "SCHEDULEDELETE",
	TxNodeCreate:             "NODECREATE",
	TxNodeUpdate:             "NODEUPDATE",
	TxNodeDelete:             "NODEDELETE",
	TxUtilPrng:               "UTILPRNG",
	TxAtomicBatch:            "ATOMICBATCH",
	TxFreeze:                 "FREEZE",
}

// Valid reports whether t is a known type.
func (t TransactionType) Valid() bool {
	return t > TxUnknown && t < txTypeCount
}

func (t TransactionType) String() string {
	if t < txTypeCount {
		return transactionTypeNames[t]
	}
	return fmt.Sprintf("TransactionType(%d)", uint8(t))
}

// TransactionTypes lists every known type in wire order.
func TransactionTypes() []TransactionType {
	res := make([]TransactionType, 0, txTypeCount-1)
	for t := TxUnknown + 1; t < txTypeCount; t++ {
		res = append(res, t)
	}
	return res
}
