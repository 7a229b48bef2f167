package adapter

import (
	"github.com/terabiome/kubeboot/internal/api"
	"github.com/terabiome/kubeboot/pkg/join"
	"github.com/terabiome/kubeboot/pkg/kubeconfig"
)

// FetchRequestFromArgs builds the fetch contract from the CLI's four
// positional arguments.
func FetchRequestFromArgs(workspace, publicAddress, privateAddress, key string) api.FetchRequest {
	return api.FetchRequest{
		Workspace:      workspace,
		PublicAddress:  publicAddress,
		PrivateAddress: privateAddress,
		Key:            key,
	}
}

func AdaptFetchRequest(req api.FetchRequest) kubeconfig.Params {
	return kubeconfig.Params{
		Workspace:      req.Workspace,
		PublicAddress:  req.PublicAddress,
		PrivateAddress: req.PrivateAddress,
		KeyPath:        req.Key,
	}
}

func AdaptJoinRequest(req api.JoinRequest) join.Params {
	return join.Params{
		Host:    req.Host,
		KeyPath: req.Key,
	}
}

func AdaptJoinCommand(command string) api.JoinResponse {
	return api.JoinResponse{
		Command: command,
	}
}
