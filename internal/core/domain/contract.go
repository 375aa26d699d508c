package domain

// ContractRecord is the persisted outcome of one composed operation: the
// serialized aggregate wrapped into a transaction URI, plus the cosigners the
// caller still has to collect signatures from.
type ContractRecord struct {
	// Id is the uuid assigned at composition time.
	Id      string
	TokenId string
	// Command is the name of the operation that produced the contract.
	Command string
	URI     string
	// Hash is the aggregate hash bound to the network generation hash.
	Hash       string
	InnerCount int
	// Cosigners are the public keys of the required cosigners, in signing
	// order.
	Cosigners []string
	// Announced is set once the contract has been handed to the network.
	Announced bool
	CreatedAt int64
}
