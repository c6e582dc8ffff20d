package abmf

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/free5gc/ocs/internal/logger"
	"github.com/free5gc/ocs/internal/reservation"
	"github.com/free5gc/util/mongoapi"
)

const accountColl = "ocsAccounts"

// MongoDataSource keeps accounts in the "ocsAccounts" collection, one
// document per subscriber keyed by userId.
type MongoDataSource struct {
	dbName string
	url    string
}

var _ DataSource = (*MongoDataSource)(nil)

func NewMongoDataSource(dbName, url string) *MongoDataSource {
	return &MongoDataSource{dbName: dbName, url: url}
}

func (m *MongoDataSource) Init(context.Context) error {
	if err := mongoapi.SetMongoDB(m.dbName, m.url); err != nil {
		return errors.Wrapf(err, "connect MongoDB %s", m.url)
	}
	logger.AbmfLog.Infof("Accounts stored in MongoDB [%s] collection [%s]", m.dbName, accountColl)
	return nil
}

func decodeAccount(doc map[string]interface{}) (reservation.Account, error) {
	var account reservation.Account

	// the driver hands back loosely typed numbers, round-trip through bson
	// to land them in the typed struct
	raw, err := bson.Marshal(doc)
	if err != nil {
		return account, errors.Wrap(err, "marshal account document")
	}
	if err := bson.Unmarshal(raw, &account); err != nil {
		return account, errors.Wrap(err, "unmarshal account document")
	}
	return account, nil
}

func (m *MongoDataSource) GetUser(_ context.Context, userID string) (reservation.Account, error) {
	filter := bson.M{"userId": userID}
	doc, err := mongoapi.RestfulAPIGetOne(accountColl, filter)
	if err != nil {
		return reservation.Account{}, errors.Wrapf(err, "get account %s", userID)
	}
	if len(doc) == 0 {
		return reservation.Account{}, errors.Wrap(ErrUserNotFound, userID)
	}
	return decodeAccount(doc)
}

func (m *MongoDataSource) UpdateUser(_ context.Context, userID string, balance, reserved uint64) error {
	filter := bson.M{"userId": userID}
	data := bson.M{
		"userId":   userID,
		"balance":  int64(balance),
		"reserved": int64(reserved),
	}
	if _, err := mongoapi.RestfulAPIPutOne(accountColl, filter, data); err != nil {
		return errors.Wrapf(err, "put account %s", userID)
	}
	return nil
}

func (m *MongoDataSource) ListUsers(_ context.Context, filter string) ([]reservation.Account, error) {
	query := bson.M{"userId": bson.M{"$regex": likePattern(filter)}}
	docs, err := mongoapi.RestfulAPIGetMany(accountColl, query)
	if err != nil {
		return nil, errors.Wrapf(err, "list accounts %q", filter)
	}

	accounts := make([]reservation.Account, 0, len(docs))
	for _, doc := range docs {
		account, err := decodeAccount(doc)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	sortAccounts(accounts)
	return accounts, nil
}
