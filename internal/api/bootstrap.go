package api

// JoinRequest asks a control-plane node to mint a one-time worker join
// command. Read as a single JSON object from stdin by the join-command
// subcommand.
type JoinRequest struct {
	Host string `json:"host"` // IP address, hostname, or domain of a control-plane node
	Key  string `json:"key"`  // Path to the SSH private key used to authenticate
}

// JoinResponse carries the literal shell invocation a worker node must
// run to join the cluster. The shape is an integration contract with
// external orchestration tooling: exactly one field, no extras.
type JoinResponse struct {
	Command string `json:"command"`
}

// FetchRequest names the inputs of a kubeconfig fetch: download the
// admin credential from PublicAddress, rewrite PrivateAddress to
// PublicAddress inside it, and persist it as <Workspace>.conf.
type FetchRequest struct {
	Workspace      string `json:"workspace"`
	PublicAddress  string `json:"public_address"`
	PrivateAddress string `json:"private_address"`
	Key            string `json:"key"`
}
