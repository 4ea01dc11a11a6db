/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"

	"field-booking-go/internal/common"
	"field-booking-go/internal/config"
	"field-booking-go/internal/store"

	"go.uber.org/zap"
)

// seedFields upserts every catalog field and prints one line per field
func seedFields(ctx context.Context, services *common.Services, fields []store.FieldParams) (int, []string) {
	var seeded int
	var failed []string

	for i, params := range fields {
		isLast := i == len(fields)-1

		field, err := services.DbService.UpsertField(ctx, params)
		if err != nil {
			zap.L().Error("Failed to seed field",
				zap.String("field_id", params.Id),
				zap.Error(err))
			fmt.Printf("%s ✗ %s: %s\n", common.BoxPrefix(isLast), params.Id, store.ErrorKind(err))
			failed = append(failed, params.Id)
			continue
		}

		fmt.Printf("%s ✓ %-12s %-24s %10s/h\n",
			common.BoxPrefix(isLast),
			field.Id,
			field.Name,
			common.FormatAmount(field.PricePerHour))
		if field.OwnerUserId != "" {
			fmt.Printf("%s   owner: %s\n", common.BoxDetailPrefix(isLast), field.OwnerUserId)
		}
		seeded++
	}

	return seeded, failed
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	fieldsFlag := flag.String("fields", "", "Field catalog file (defaults to FIELDS_FILE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	fieldsFile := cfg.Catalog.FieldsFile
	if *fieldsFlag != "" {
		fieldsFile = *fieldsFlag
	}

	// Opening the service creates the schema
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if err := services.BookingService.HealthCheck(ctx); err != nil {
		zap.L().Fatal("Database health check failed", zap.Error(err))
	}

	zap.L().Info("Loading field catalog", zap.String("file", fieldsFile))
	fields, err := common.LoadFieldCatalog(fieldsFile)
	if err != nil {
		zap.L().Fatal("Failed to load field catalog", zap.Error(err))
	}

	common.PrintHeader("FIELD CATALOG", common.DefaultWidth)
	seeded, failed := seedFields(ctx, services, fields)
	common.PrintFooter(fmt.Sprintf("SUMMARY: %d of %d fields seeded", seeded, len(fields)), common.DefaultWidth)

	if len(failed) > 0 {
		zap.L().Warn("Field seeding completed with some failures",
			zap.Int("seeded", seeded),
			zap.Strings("failed_fields", failed))
		return
	}
	zap.L().Info("Field seeding completed successfully", zap.Int("seeded", seeded))
}
