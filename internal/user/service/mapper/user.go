package mapper

import (
	"github.com/avlasov/userhub/internal/user/domain"
	"github.com/avlasov/userhub/internal/user/service/dto"
)

// UserToDTO serializes a user for external consumption. The integer primary
// key is replaced by the opaque id, which the caller resolves first.
func UserToDTO(user domain.User, opaqueID string) dto.User {
	return dto.User{
		ID:        opaqueID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

func SummaryToDTO(summary domain.Summary) dto.UserSummary {
	return dto.UserSummary{
		ID:        summary.OpaqueID,
		Username:  summary.Username,
		CreatedAt: summary.CreatedAt,
	}
}
