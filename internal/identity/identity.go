package identity

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	ctrl "sigs.k8s.io/controller-runtime"
)

// GetManagementToken acquires a bearer token through workload identity for a
// management API fronted by Azure AD. The audience comes from the
// ManagementContext so the same mechanism works against any AD-protected
// control plane.
func GetManagementToken(ctx context.Context, clientID, tenantID, audience string) (string, error) {
	logger := ctrl.Log.WithName("identity")

	cred, err := azidentity.NewWorkloadIdentityCredential(&azidentity.WorkloadIdentityCredentialOptions{
		ClientID:      clientID,
		TenantID:      tenantID,
		TokenFilePath: "/var/run/secrets/azure/tokens/azure-identity-token",
	})
	if err != nil {
		logger.Error(err, "❌ Failed to create workload identity credential")
		return "", err
	}

	token, err := cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{audience + "/.default"},
	})
	if err != nil {
		logger.Error(err, "❌ Failed to get access token", "audience", audience)
		return "", err
	}

	logger.Info("✅ Successfully acquired token", "expires", token.ExpiresOn.Format(time.RFC3339))
	return token.Token, nil
}
