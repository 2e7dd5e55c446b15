package repository_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/orris-inc/paypoint/internal/application/payment/paymentgateway"
	"github.com/orris-inc/paypoint/internal/application/payment/usecases"
	"github.com/orris-inc/paypoint/internal/domain/order"
	vo "github.com/orris-inc/paypoint/internal/domain/order/valueobjects"
	"github.com/orris-inc/paypoint/internal/infrastructure/cache"
	"github.com/orris-inc/paypoint/internal/infrastructure/persistence/models"
	"github.com/orris-inc/paypoint/internal/infrastructure/repository"
	"github.com/orris-inc/paypoint/internal/shared/config"
	"github.com/orris-inc/paypoint/internal/shared/db"
	"github.com/orris-inc/paypoint/internal/shared/logger"
)

func openPipelineDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(&models.OrderModel{}, &models.PaymentCallbackModel{}))
	return gdb
}

func TestConfirmationPipeline_ConcurrentDuplicateCallbacks(t *testing.T) {
	gdb := openPipelineDB(t)
	orders := repository.NewOrderRepository(gdb)
	callbacks := repository.NewPaymentCallbackRepository(gdb)
	ctx := context.Background()

	o, err := order.NewOrder("buyer@example.com", decimal.RequireFromString("10"), "GBP")
	require.NoError(t, err)
	require.NoError(t, orders.Create(ctx, o))

	verifier := paymentgateway.NewRESTGateway(config.PayPointRESTConfig{UseSandbox: true}, logger.NewNopLogger())
	uc := usecases.NewHandlePaymentCallbackUseCase(
		orders,
		verifier,
		db.NewTransactionManager(gdb),
		cache.NewLocalOrderLocker(10*time.Second),
		logger.NewNopLogger(),
	)
	uc.SetCallbackLog(callbacks)

	const workers = 10
	stages := make(chan usecases.Stage, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"transaction":{"transactionId":"T%d","merchantRef":%q,"status":"SUCCESS"}}`, i, o.OrderGUID().String())
			cb, err := paymentgateway.NewCallback(httptest.NewRequest("POST", "/Plugins/PaymentPayPoint/Callback", strings.NewReader(body)), "")
			if err != nil {
				return
			}
			result, _ := uc.Execute(ctx, cb)
			stages <- result.Stage
		}(i)
	}
	wg.Wait()
	close(stages)

	counts := map[usecases.Stage]int{}
	for s := range stages {
		counts[s]++
	}
	assert.Equal(t, 1, counts[usecases.StageApplied])
	assert.Equal(t, workers-1, counts[usecases.StageSkippedAlreadyTerminal])

	stored, err := orders.GetByID(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.PaymentStatusPaid, stored.PaymentStatus())
	require.NotNil(t, stored.CaptureTransactionID())
	assert.True(t, strings.HasPrefix(*stored.CaptureTransactionID(), "T"))

	logged, err := callbacks.ListByOrderRef(ctx, o.OrderGUID().String())
	require.NoError(t, err)
	assert.Len(t, logged, workers)
}
