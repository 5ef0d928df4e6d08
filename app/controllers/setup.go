package controllers

import (
	"github.com/coparrent/coparrent/app/repository"
	"github.com/coparrent/coparrent/internal/pkg/database"
)

var repoFactory *repository.Factory

// InitializeControllers wires the repository factory used by the handlers.
// Called once during router installation.
func InitializeControllers() {
	repoFactory = repository.NewFactory(database.GetDB())
}

func profileRepo() repository.ProfileRepository {
	if repoFactory == nil {
		InitializeControllers()
	}
	return repoFactory.GetProfileRepository()
}
