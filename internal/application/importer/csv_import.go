package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	appinventory "github.com/xiebiao/mtgkiosk/internal/application/inventory"
	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/messaging"
	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
	"github.com/xiebiao/mtgkiosk/pkg/logger"
	"github.com/xiebiao/mtgkiosk/pkg/metrics"
	"github.com/xiebiao/mtgkiosk/pkg/tracing"
)

// Options 导入参数
type Options struct {
	BatchSize       int // 每个事务处理的行数
	MaxReportErrors int // 报告中最多返回的行错误数(skipped仍然完整计数)
}

// CSVImportUseCase CSV库存导入
// 业务规则:
// 1. 按文件顺序处理,每行在批次事务内锁定卡牌行后计算增量,下一行看到的是本行的结果
// 2. 单行错误(卡牌不存在、数量/闪卡非法、列数不符)跳过并记录,其余行照常提交
// 3. 数据库错误中止当前批次和后续导入,已提交的批次保留
// 4. 结束后刷新聚合表(仅collection)、失效缓存、发布import.completed
type CSVImportUseCase struct {
	tx          inventory.TxManager
	repo        inventory.Repository
	refresher   *appinventory.RefreshCountsUseCase
	invalidator *appinventory.Invalidator
	publisher   inventory.EventPublisher
	opts        Options
}

// NewCSVImportUseCase 创建导入用例
func NewCSVImportUseCase(
	tx inventory.TxManager,
	repo inventory.Repository,
	refresher *appinventory.RefreshCountsUseCase,
	invalidator *appinventory.Invalidator,
	publisher inventory.EventPublisher,
	opts Options,
) *CSVImportUseCase {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.MaxReportErrors <= 0 {
		opts.MaxReportErrors = 1000
	}
	return &CSVImportUseCase{
		tx:          tx,
		repo:        repo,
		refresher:   refresher,
		invalidator: invalidator,
		publisher:   publisher,
		opts:        opts,
	}
}

// Report 导入结果
type Report struct {
	Message  string               `json:"message"`
	Imported int                  `json:"imported"`
	Skipped  int                  `json:"skipped"`
	Errors   []inventory.RowError `json:"errors"`
}

func (r *Report) skip(line int, scryfallID string, err error, limit int) {
	r.Skipped++
	if len(r.Errors) < limit {
		r.Errors = append(r.Errors, inventory.RowError{Row: line, ScryfallID: scryfallID, Error: errorMessage(err)})
	}
}

// Execute 导入CSV
func (uc *CSVImportUseCase) Execute(ctx context.Context, bucket inventory.Bucket, r io.Reader) (report *Report, err error) {
	if !bucket.Valid() {
		return nil, inventory.ErrInvalidBucket
	}

	ctx, span := tracing.StartSpan(ctx, "importer", "ImportCSV")
	span.SetAttributes(attribute.String("bucket", bucket.String()))
	defer func() { tracing.EndSpan(span, err) }()

	start := time.Now()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.New(apperrors.ErrCodeInvalidCSV, "CSV file is empty")
		}
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidCSV, "unable to read CSV: %v", err)
	}
	if missing := inventory.MissingColumns(header); len(missing) > 0 {
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidCSV, "missing required columns: %s", strings.Join(missing, ", "))
	}
	idx := inventory.HeaderIndex(header)

	report = &Report{Errors: []inventory.RowError{}}
	batch := make([]inventory.Row, 0, uc.opts.BatchSize)

	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			var parseErr *csv.ParseError
			if !errors.As(readErr, &parseErr) {
				return nil, apperrors.Newf(apperrors.ErrCodeInvalidCSV, "unable to read CSV: %v", readErr)
			}
			report.skip(parseErr.StartLine, "", inventory.InvalidRowf("malformed CSV row: %v", parseErr.Err), uc.opts.MaxReportErrors)
			continue
		}
		if isBlank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		if len(record) != len(header) {
			report.skip(line, "", inventory.InvalidRowf("expected %d fields, got %d", len(header), len(record)), uc.opts.MaxReportErrors)
			continue
		}

		row, err := inventory.ParseRow(line, record, idx)
		if err != nil {
			report.skip(line, row.ScryfallID, err, uc.opts.MaxReportErrors)
			continue
		}

		batch = append(batch, row)
		if len(batch) >= uc.opts.BatchSize {
			if err := uc.applyBatch(ctx, bucket, batch, report); err != nil {
				return nil, err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := uc.applyBatch(ctx, bucket, batch, report); err != nil {
			return nil, err
		}
	}

	report.Message = fmt.Sprintf("Import completed: %d imported, %d skipped", report.Imported, report.Skipped)
	uc.finish(ctx, bucket, report, time.Since(start))
	span.SetAttributes(attribute.Int("imported", report.Imported), attribute.Int("skipped", report.Skipped))
	return report, nil
}

// applyBatch 一个事务处理一批行;事务失败时本批次的统计不计入报告
func (uc *CSVImportUseCase) applyBatch(ctx context.Context, bucket inventory.Bucket, rows []inventory.Row, report *Report) error {
	local := Report{}
	err := uc.tx.Transaction(ctx, func(ctx context.Context) error {
		local = Report{}
		for _, row := range rows {
			current, err := uc.repo.LockByID(ctx, row.ScryfallID)
			if errors.Is(err, card.ErrCardNotFound) {
				local.skip(row.Line, row.ScryfallID, card.ErrCardNotFound, uc.opts.MaxReportErrors)
				continue
			}
			if err != nil {
				return err
			}

			delta, err := inventory.Plan(bucket, current, row.Quantity, row.Foil)
			if err != nil {
				local.skip(row.Line, row.ScryfallID, err, uc.opts.MaxReportErrors)
				continue
			}
			if err := uc.repo.ApplyDelta(ctx, row.ScryfallID, delta); err != nil {
				if errors.Is(err, inventory.ErrNegativeCounter) {
					local.skip(row.Line, row.ScryfallID, err, uc.opts.MaxReportErrors)
					continue
				}
				return err
			}
			local.Imported++
		}
		return nil
	})
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Int("first_row", rows[0].Line).Msg("导入批次失败,已回滚")
		return err
	}

	report.Imported += local.Imported
	report.Skipped += local.Skipped
	for _, e := range local.Errors {
		if len(report.Errors) >= uc.opts.MaxReportErrors {
			break
		}
		report.Errors = append(report.Errors, e)
	}
	return nil
}

func (uc *CSVImportUseCase) finish(ctx context.Context, bucket inventory.Bucket, report *Report, elapsed time.Duration) {
	metrics.RecordImport(bucket.String(), report.Imported, report.Skipped, elapsed)

	if bucket == inventory.Collection && report.Imported > 0 {
		if _, err := uc.refresher.Execute(ctx); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("导入后刷新聚合失败")
		}
	}
	uc.invalidator.Bucket(ctx, bucket)

	messaging.PublishSafe(ctx, uc.publisher, inventory.EventImportCompleted, inventory.ImportCompletedEvent{
		Bucket:     bucket,
		Imported:   report.Imported,
		Skipped:    report.Skipped,
		OccurredAt: time.Now().UTC(),
	})

	logger.Ctx(ctx).Info().
		Str("bucket", bucket.String()).
		Int("imported", report.Imported).
		Int("skipped", report.Skipped).
		Dur("elapsed", elapsed).
		Msg("CSV导入完成")
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func errorMessage(err error) string {
	if apperrors.IsAppError(err) {
		return apperrors.GetAppError(err).Message
	}
	return err.Error()
}
