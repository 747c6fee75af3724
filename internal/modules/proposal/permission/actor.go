package permission

import types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"

type Actor = types.Actor
