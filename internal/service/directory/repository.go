package directory

import (
	"context"
	"errors"

	"signaling-server/internal/database"
	"signaling-server/internal/model"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("directory repository: not found")

type Repository interface {
	GetUser(ctx context.Context, userID string) (model.UserItem, error)
	PutUser(ctx context.Context, user model.UserItem) error
}

type DynamoRepository struct {
	db    *database.Database
	table string
}

func NewDynamoRepository(db *database.Database, table string) Repository {
	if table == "" {
		table = model.UsersTable
	}
	return &DynamoRepository{db: db, table: table}
}

func (r *DynamoRepository) GetUser(ctx context.Context, userID string) (model.UserItem, error) {
	var user model.UserItem
	err := r.db.Client.GetItem(ctx, r.table, map[string]types.AttributeValue{
		"userId": database.AttrString(userID),
	}, &user)
	if errors.Is(err, database.ErrItemNotFound) {
		return model.UserItem{}, ErrNotFound
	}
	if err != nil {
		return model.UserItem{}, err
	}
	return user, nil
}

func (r *DynamoRepository) PutUser(ctx context.Context, user model.UserItem) error {
	return r.db.Client.PutItem(ctx, r.table, user)
}
