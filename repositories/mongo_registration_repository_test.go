package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Dosada05/medcamp/models"
)

func stageNames(p []bson.D) []string {
	names := make([]string, len(p))
	for i, stage := range p {
		names[i] = stage[0].Key
	}
	return names
}

func TestPaidRegistrationsPipeline(t *testing.T) {
	p := PaidRegistrationsPipeline(models.PaidRegistrationsFilter{Search: "proc", Limit: 500, Offset: 20})
	require.Equal(t, []string{"$match", "$sort", "$skip", "$limit", "$lookup", "$unwind"}, stageNames(p))

	match, ok := p[0][0].Value.(bson.M)
	require.True(t, ok)
	assert.Equal(t, models.PaymentPaid, match["paymentStatus"])
	assert.Equal(t, bson.A{
		bson.M{"participantName": primitive.Regex{Pattern: "proc", Options: "i"}},
		bson.M{"confirmationStatus": primitive.Regex{Pattern: "proc", Options: "i"}},
	}, match["$or"])

	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, p[1][0].Value)
	assert.Equal(t, int64(20), p[2][0].Value)
	assert.Equal(t, int64(100), p[3][0].Value, "limit is clamped")
	assert.Equal(t, "$camp", p[5][0].Value)
}

func TestPaidRegistrationsPipeline_Defaults(t *testing.T) {
	p := PaidRegistrationsPipeline(models.PaidRegistrationsFilter{Offset: -5})

	match := p[0][0].Value.(bson.M)
	assert.NotContains(t, match, "$or")
	assert.Equal(t, int64(0), p[2][0].Value)
	assert.Equal(t, int64(10), p[3][0].Value)
}

func TestContainsRegex(t *testing.T) {
	assert.Equal(t, primitive.Regex{Pattern: `a\.b\*`, Options: "i"}, containsRegex(" a.b* "))
}
