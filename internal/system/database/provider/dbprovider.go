/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package provider provides functionality for managing database connections and clients.
package provider

import (
	"database/sql"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/opsdeck/flowcore/internal/system/config"
	"github.com/opsdeck/flowcore/internal/system/database/client"
	"github.com/opsdeck/flowcore/internal/system/database/model"
	"github.com/opsdeck/flowcore/internal/system/log"
)

const (
	// DataSourceWorkflow is the data source holding workflow definitions and run history.
	DataSourceWorkflow = "workflow"
	// DataSourceData is the data source targeted by database node types.
	DataSourceData = "data"
)

// dbConfig represents the local database configuration.
type dbConfig struct {
	dsn        string
	driverName string
}

// DBProviderInterface defines the interface for getting database clients.
type DBProviderInterface interface {
	GetDBClient(dbName string) (client.DBClientInterface, error)
	Close() error
}

// DBProvider is the implementation of DBProviderInterface.
type DBProvider struct {
	dataSources map[string]config.DataSource
	home        string
	clients     map[string]client.DBClientInterface
	mutex       sync.RWMutex
}

var (
	instance *DBProvider
	once     sync.Once
)

// GetDBProvider returns the instance of DBProvider configured from the runtime configuration.
func GetDBProvider() DBProviderInterface {
	once.Do(func() {
		runtime := config.GetRuntime()
		instance = NewDBProvider(runtime.Home, runtime.Config.Database)
	})
	return instance
}

// NewDBProvider creates a provider for the workflow and data sources of the given configuration.
func NewDBProvider(home string, databaseConfig config.DatabaseConfig) *DBProvider {
	return &DBProvider{
		dataSources: map[string]config.DataSource{
			DataSourceWorkflow: databaseConfig.Workflow,
			DataSourceData:     databaseConfig.Data,
		},
		home:    home,
		clients: make(map[string]client.DBClientInterface),
	}
}

// GetDBClient returns a database client based on the provided database name.
// Not required to close the returned client manually since it manages its own connection pool.
func (d *DBProvider) GetDBClient(dbName string) (client.DBClientInterface, error) {
	dataSource, ok := d.dataSources[dbName]
	if !ok {
		return nil, fmt.Errorf("unsupported database name: %s", dbName)
	}
	if dataSource.Type == "" {
		return nil, fmt.Errorf("database %s is not configured", dbName)
	}

	d.mutex.RLock()
	if dbClient, ok := d.clients[dbName]; ok {
		d.mutex.RUnlock()
		return dbClient, nil
	}
	d.mutex.RUnlock()

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if dbClient, ok := d.clients[dbName]; ok {
		return dbClient, nil
	}

	dbClient, err := d.initializeClient(dbName, dataSource)
	if err != nil {
		return nil, err
	}
	d.clients[dbName] = dbClient

	return dbClient, nil
}

// initializeClient opens a connection pool for the data source and verifies it.
func (d *DBProvider) initializeClient(dbName string, dataSource config.DataSource) (client.DBClientInterface, error) {
	dbConfig, err := d.getDBConfig(dataSource)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dbConfig.driverName, dbConfig.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %w", dbName, err)
	}

	if dataSource.MaxOpenConns > 0 {
		db.SetMaxOpenConns(dataSource.MaxOpenConns)
	}
	if dataSource.MaxIdleConns > 0 {
		db.SetMaxIdleConns(dataSource.MaxIdleConns)
	}
	if dataSource.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(dataSource.ConnMaxLifetime) * time.Second)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database %s: %w (close error: %w)", dbName, err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database %s: %w", dbName, err)
	}

	// Enable foreign key constraints for SQLite databases
	if dbConfig.driverName == model.DBTypeSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				return nil, fmt.Errorf("failed to enable foreign key constraints for %s: %w (close error: %w)",
					dbName, err, closeErr)
			}
			return nil, fmt.Errorf("failed to enable foreign key constraints for %s: %w", dbName, err)
		}
	}

	log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBProvider")).
		Debug("Database client initialized", log.String("dataSource", dbName),
			log.String("type", dbConfig.driverName))

	return client.NewDBClient(model.NewDB(db), dbConfig.driverName), nil
}

// getDBConfig returns the database configuration based on the provided data source.
func (d *DBProvider) getDBConfig(dataSource config.DataSource) (dbConfig, error) {
	var cfg dbConfig

	switch dataSource.Type {
	case model.DBTypePostgres:
		cfg.driverName = model.DBTypePostgres
		cfg.dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			dataSource.Hostname, dataSource.Port, dataSource.Username, dataSource.Password,
			dataSource.Name, dataSource.SSLMode)
	case model.DBTypeSQLite:
		cfg.driverName = model.DBTypeSQLite
		options := dataSource.Options
		if options != "" && options[0] != '?' {
			options = "?" + options
		}
		dbPath := dataSource.Path
		if !path.IsAbs(dbPath) && dbPath != ":memory:" {
			dbPath = path.Join(d.home, dbPath)
		}
		cfg.dsn = fmt.Sprintf("%s%s", dbPath, options)
	default:
		return cfg, fmt.Errorf("unsupported database type: %s", dataSource.Type)
	}

	return cfg, nil
}

// Close closes every database client opened by the provider.
func (d *DBProvider) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	var errs []error
	for name, dbClient := range d.clients {
		if err := dbClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s client: %w", name, err))
		}
		delete(d.clients, name)
	}
	return errors.Join(errs...)
}
