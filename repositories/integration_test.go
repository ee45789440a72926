package repositories_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/medcamp/db"
	"github.com/Dosada05/medcamp/models"
	"github.com/Dosada05/medcamp/repositories"
)

// Тесты ходят в настоящую базу и пропускаются без TEST_DATABASE_URL / TEST_MONGO_URI.
// Для Mongo нужен replica set: Create работает в транзакции.

const concurrentSignups = 16

func postgresStore(t *testing.T) *repositories.Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	conn, err := db.Connect(dsn, 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn))

	return &repositories.Store{
		Camps:         repositories.NewPostgresCampRepository(conn),
		Registrations: repositories.NewPostgresRegistrationRepository(conn),
	}
}

func mongoStore(t *testing.T) *repositories.Store {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI is not set")
	}

	client, err := db.ConnectMongo(uri, 5*time.Second)
	require.NoError(t, err)
	database := client.Database("medcamp_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		ctx := context.Background()
		_ = database.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	require.NoError(t, repositories.EnsureMongoIndexes(context.Background(), database))

	return &repositories.Store{
		Camps:         repositories.NewMongoCampRepository(database),
		Registrations: repositories.NewMongoRegistrationRepository(database),
	}
}

func seedCamp(t *testing.T, store *repositories.Store) *models.Camp {
	t.Helper()
	camp := &models.Camp{
		ID:                     uuid.NewString(),
		Name:                   "Cardio check",
		Description:            "Free screening",
		Location:               "Dhaka",
		Date:                   time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second),
		Fees:                   50,
		HealthcareProfessional: "Dr. Rahman",
		OrganizerEmail:         "boss@camp.org",
	}
	require.NoError(t, store.Camps.Create(context.Background(), camp))
	t.Cleanup(func() { _ = store.Camps.Delete(context.Background(), camp.ID) })
	return camp
}

func newRegistration(campID, email string) *models.Registration {
	return &models.Registration{
		ID:                 uuid.NewString(),
		CampID:             campID,
		ParticipantEmail:   email,
		ParticipantName:    "Ann",
		Age:                30,
		PhoneNumber:        "+8801700000000",
		Gender:             "female",
		EmergencyContact:   "+8801700000001",
		ConfirmationStatus: models.ConfirmationPending,
		PaymentStatus:      models.PaymentPay,
		CreatedAt:          time.Now().UTC().Truncate(time.Microsecond),
	}
}

var backends = map[string]func(*testing.T) *repositories.Store{
	"postgres": postgresStore,
	"mongo":    mongoStore,
}

func TestRegistrationRepository_ConcurrentCreateHasOneWinner(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			camp := seedCamp(t, store)
			ctx := context.Background()

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				winners   int
				conflicts int
				others    []error
			)
			start := make(chan struct{})
			for i := 0; i < concurrentSignups; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					err := store.Registrations.Create(ctx, newRegistration(camp.ID, "ann@mail.com"))

					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						winners++
					case errors.Is(err, repositories.ErrRegistrationConflict):
						conflicts++
					default:
						others = append(others, err)
					}
				}()
			}
			close(start)
			wg.Wait()

			require.Empty(t, others)
			assert.Equal(t, 1, winners)
			assert.Equal(t, concurrentSignups-1, conflicts)

			got, err := store.Camps.GetByID(ctx, camp.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, got.ParticipantCount)

			count, err := store.Registrations.CountByCamp(ctx, camp.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		})
	}
}

func TestCampRepository_CountNeverGoesNegative(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			camp := seedCamp(t, store)
			ctx := context.Background()

			_, err := store.Camps.AdjustParticipantCount(ctx, camp.ID, -1)
			assert.ErrorIs(t, err, repositories.ErrCampCountUnderflow)

			_, err = store.Camps.AdjustParticipantCount(ctx, uuid.NewString(), 1)
			assert.ErrorIs(t, err, repositories.ErrCampNotFound)

			got, err := store.Camps.GetByID(ctx, camp.ID)
			require.NoError(t, err)
			assert.Equal(t, 0, got.ParticipantCount)
		})
	}
}

func TestRegistrationRepository_TransactionIDIsUnique(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			camp := seedCamp(t, store)
			ctx := context.Background()

			first := newRegistration(camp.ID, "ann@mail.com")
			second := newRegistration(camp.ID, "bob@mail.com")
			require.NoError(t, store.Registrations.Create(ctx, first))
			require.NoError(t, store.Registrations.Create(ctx, second))

			txID := "pi_" + uuid.NewString()
			changed, err := store.Registrations.MarkPaid(ctx, first.ID, &txID, time.Now().UTC())
			require.NoError(t, err)
			assert.True(t, changed)

			_, err = store.Registrations.MarkPaid(ctx, second.ID, &txID, time.Now().UTC())
			assert.ErrorIs(t, err, repositories.ErrTransactionConflict)

			// бесплатные лагеря оплачиваются без transaction id, индекс их не трогает
			free := newRegistration(camp.ID, "cid@mail.com")
			require.NoError(t, store.Registrations.Create(ctx, free))
			_, err = store.Registrations.MarkPaid(ctx, second.ID, nil, time.Now().UTC())
			require.NoError(t, err)
			_, err = store.Registrations.MarkPaid(ctx, free.ID, nil, time.Now().UTC())
			require.NoError(t, err)

			reloaded, err := store.Registrations.FindByID(ctx, second.ID)
			require.NoError(t, err)
			assert.Equal(t, models.PaymentPaid, reloaded.PaymentStatus)
			assert.Nil(t, reloaded.TransactionID)
		})
	}
}
