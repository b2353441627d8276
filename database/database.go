// Package database - Handles all interaction with ArangoDB
package database

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/arangodb/shared"
	"github.com/arangodb/go-driver/v2/connection"
	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = InitLogger() // setup the logger

// DBConnection is the structure that defined the database engine and collections
type DBConnection struct {
	Collections map[string]arangodb.Collection
	Database    arangodb.Database
}

// Define a struct to hold the index definition
type indexConfig struct {
	Collection string
	IdxName    string
	Fields     []string
	Unique     bool
	Sparse     bool
}

var initDone = false          // has the data been initialized
var dbConnection DBConnection // database connection definition

// Sentinel errors the REST layer maps to 404 and 409. ErrStaleEntity means the
// revision the caller validated against is no longer current; re-fetch and retry.
var (
	ErrNotFound    = errors.New("document not found")
	ErrStaleEntity = errors.New("entity revision is stale")
)

// GetEnvDefault is a convenience function for handling env vars
func GetEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key) // get the env var
	if !ex {                     // not found return default
		return defVal
	}
	return val // return value for env var
}

// InitLogger sets up the Zap Logger to log to the console in a human readable format
func InitLogger() *zap.Logger {
	prodConfig := zap.NewProductionConfig()
	prodConfig.Encoding = "console"
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	logger, _ := prodConfig.Build()
	return logger
}

func dbConnectionConfig(endpoint connection.Endpoint, dbuser string, dbpass string) connection.HttpConfiguration {
	return connection.HttpConfiguration{
		Authentication: connection.NewBasicAuth(dbuser, dbpass),
		Endpoint:       endpoint,
		ContentType:    connection.ApplicationJSON,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402
			},
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 90 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// InitializeDatabase is the function for connecting to the db engine, creating the database and collections
func InitializeDatabase() DBConnection {
	const initialInterval = 10 * time.Second
	const maxInterval = 2 * time.Minute

	var db arangodb.Database
	var collections map[string]arangodb.Collection

	ctx := context.Background()

	if initDone {
		return dbConnection
	}

	False := false
	True := true
	databaseName := GetEnvDefault("ARANGO_DATABASE", "vulnmgt")
	dbhost := GetEnvDefault("ARANGO_HOST", "localhost")
	dbport := GetEnvDefault("ARANGO_PORT", "8529")
	dbuser := GetEnvDefault("ARANGO_USER", "root")
	dbpass := GetEnvDefault("ARANGO_PASS", "mypassword")
	dburl := GetEnvDefault("ARANGO_URL", "http://"+dbhost+":"+dbport)

	var client arangodb.Client

	//
	// Database connection with backoff retry
	//

	// Configure exponential backoff
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = 0 // Set to 0 for indefinite retries

	// Retry logic
	err := backoff.RetryNotify(func() error {
		fmt.Println("Attempting to connect to ArangoDB")
		endpoint := connection.NewRoundRobinEndpoints([]string{dburl})
		conn := connection.NewHttpConnection(dbConnectionConfig(endpoint, dbuser, dbpass))

		client = arangodb.NewClient(conn)

		// Ask the version of the server
		versionInfo, err := client.Version(context.Background())
		if err != nil {
			return err
		}

		logger.Sugar().Infof("Database has version '%s' and license '%s'\n", versionInfo.Version, versionInfo.License)
		return nil

	}, bo, func(err error, _ time.Duration) {
		fmt.Printf("Retrying connection to ArangoDB: %v\n", err)
	})

	if err != nil {
		logger.Sugar().Fatalf("Backoff Error %v\n", err)
	}

	//
	// Database creation
	//

	exists := false
	dblist, _ := client.Databases(ctx)

	for _, dbinfo := range dblist {
		if dbinfo.Name() == databaseName {
			exists = true
			break
		}
	}

	if exists {
		var options arangodb.GetDatabaseOptions
		if db, err = client.GetDatabase(ctx, databaseName, &options); err != nil {
			logger.Sugar().Fatalf("Failed to get Database: %v", err)
		}
	} else {
		if db, err = client.CreateDatabase(ctx, databaseName, nil); err != nil {
			logger.Sugar().Fatalf("Failed to create Database: %v", err)
		}
	}

	//
	// Collection creation for document storage
	//

	collections = make(map[string]arangodb.Collection)
	// We keep "metadata" here so the collection is created
	collectionNames := []string{"assessment", "asset", "vulnerability", "finding", "attachment", "scan_import", "metadata"}

	for _, collectionName := range collectionNames {
		var col arangodb.Collection

		exists, _ = db.CollectionExists(ctx, collectionName)
		if exists {
			var options arangodb.GetCollectionOptions
			if col, err = db.GetCollection(ctx, collectionName, &options); err != nil {
				logger.Sugar().Fatalf("Failed to use collection: %v", err)
			}
		} else {
			if col, err = db.CreateCollectionV2(ctx, collectionName, nil); err != nil {
				logger.Sugar().Fatalf("Failed to create collection: %v", err)
			}
		}

		collections[collectionName] = col
	}

	//
	// Index creation for document collections
	//

	idxList := []indexConfig{
		// Asset collection indexes - hostname+ip is the scan dedup identity
		{Collection: "asset", IdxName: "asset_hostname", Fields: []string{"hostname"}},
		{Collection: "asset", IdxName: "asset_ip", Fields: []string{"ip_address"}},
		{Collection: "asset", IdxName: "asset_status", Fields: []string{"status"}},
		{Collection: "asset", IdxName: "asset_type", Fields: []string{"asset_type"}},
		{Collection: "asset", IdxName: "asset_environment", Fields: []string{"environment"}},
		{Collection: "asset", IdxName: "asset_identity", Fields: []string{"hostname", "ip_address"}},

		// Vulnerability collection indexes
		{Collection: "vulnerability", IdxName: "vuln_cve_id", Fields: []string{"cve_id"}},
		{Collection: "vulnerability", IdxName: "vuln_status", Fields: []string{"status"}},
		{Collection: "vulnerability", IdxName: "vuln_severity", Fields: []string{"severity"}},
		{Collection: "vulnerability", IdxName: "vuln_score", Fields: []string{"cvss_base_score"}},
		{Collection: "vulnerability", IdxName: "vuln_plugin", Fields: []string{"scanner", "plugin_id"}},

		// Finding collection indexes - the instance identity is
		// (asset, vulnerability, port, protocol); see FindFindingByInstance
		{Collection: "finding", IdxName: "finding_assessment", Fields: []string{"assessment_key"}},
		{Collection: "finding", IdxName: "finding_asset", Fields: []string{"asset_key"}},
		{Collection: "finding", IdxName: "finding_vulnerability", Fields: []string{"vulnerability_key"}},
		{Collection: "finding", IdxName: "finding_status", Fields: []string{"status"}},
		{Collection: "finding", IdxName: "finding_severity", Fields: []string{"severity"}},
		{Collection: "finding", IdxName: "finding_status_severity", Fields: []string{"status", "severity"}},
		{Collection: "finding", IdxName: "finding_instance", Fields: []string{"asset_key", "vulnerability_key", "port", "protocol"}},
		{Collection: "finding", IdxName: "finding_fixed_at", Fields: []string{"fixed_at"}, Sparse: true},
		{Collection: "finding", IdxName: "finding_risk_expiry", Fields: []string{"expires_at"}, Sparse: true},

		// Status history array indexes for trend queries over occurred_at
		{Collection: "finding", IdxName: "finding_history_occurred", Fields: []string{"status_history[*].occurred_at"}},
		{Collection: "finding", IdxName: "finding_history_status", Fields: []string{"status_history[*].new_status"}},

		// Attachment metadata indexes - lookup by owning entity
		{Collection: "attachment", IdxName: "attachment_entity", Fields: []string{"entity_kind", "entity_key"}},
		{Collection: "attachment", IdxName: "attachment_sha", Fields: []string{"content_sha"}},

		// Scan import audit indexes
		{Collection: "scan_import", IdxName: "import_source", Fields: []string{"source"}},
		{Collection: "scan_import", IdxName: "import_started", Fields: []string{"started_at"}},
		{Collection: "scan_import", IdxName: "import_status", Fields: []string{"status"}},
	}

	for _, idx := range idxList {
		found := false

		if indexes, err := collections[idx.Collection].Indexes(ctx); err == nil {
			for _, index := range indexes {
				if idx.IdxName == index.Name {
					found = true
					break
				}
			}
		}

		if !found {
			// Define the index options
			unique := &False
			if idx.Unique {
				unique = &True
			}
			sparse := &False
			if idx.Sparse {
				sparse = &True
			}
			indexOptions := arangodb.CreatePersistentIndexOptions{
				Unique: unique,
				Sparse: sparse,
				Name:   idx.IdxName,
			}

			// Create the index
			_, _, err = collections[idx.Collection].EnsurePersistentIndex(ctx, idx.Fields, &indexOptions)
			if err != nil {
				logger.Sugar().Fatalln("Error creating index:", err)
			} else {
				logger.Sugar().Infof("Created index: %s on %s %v", idx.IdxName, idx.Collection, idx.Fields)
			}
		}
	}

	initDone = true

	dbConnection = DBConnection{
		Database:    db,
		Collections: collections,
	}

	logger.Sugar().Infof("Database initialization complete with status-history and reconciliation indexes")

	return dbConnection
}

// isArangoNum reports whether err carries the given ArangoDB error number
func isArangoNum(err error, num int) bool {
	var aerr shared.ArangoError
	if errors.As(err, &aerr) {
		return aerr.ErrorNum == num
	}
	return false
}

// ReadDocumentRev reads collection/key into result and returns the current
// revision, mapping a missing document to ErrNotFound
func ReadDocumentRev(ctx context.Context, db DBConnection, collection, key string, result interface{}) (string, error) {
	meta, err := db.Collections[collection].ReadDocument(ctx, key, result)
	if err != nil {
		if shared.IsNotFound(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return meta.Rev, nil
}

// ReplaceDocumentRevChecked replaces collection/key with doc only while the
// stored revision still equals rev. A concurrent writer surfaces as
// ErrStaleEntity; the caller re-fetches the document and retries.
func ReplaceDocumentRevChecked(ctx context.Context, db DBConnection, collection, key, rev string, doc interface{}) (string, error) {
	query := `
		REPLACE { _key: @key, _rev: @rev } WITH @doc IN @@collection OPTIONS { ignoreRevs: false }
		RETURN NEW._rev
	`
	bindVars := map[string]interface{}{
		"@collection": collection,
		"key":         key,
		"rev":         rev,
		"doc":         doc,
	}

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		if isArangoNum(err, 1200) { // ERROR_ARANGO_CONFLICT
			return "", ErrStaleEntity
		}
		if isArangoNum(err, 1202) || shared.IsNotFound(err) { // ERROR_ARANGO_DOCUMENT_NOT_FOUND
			return "", ErrNotFound
		}
		return "", err
	}
	defer cursor.Close()

	if cursor.HasMore() {
		var newRev string
		if _, err := cursor.ReadDocument(ctx, &newRev); err != nil {
			return "", err
		}
		return newRev, nil
	}

	return "", ErrStaleEntity
}

// FindAssetByIdentity checks if an asset exists by normalized hostname and IP
func FindAssetByIdentity(ctx context.Context, db arangodb.Database, hostname, ipAddress string) (string, error) {
	query := `
		FOR a IN asset
			FILTER a.hostname == @hostname
			   AND a.ip_address == @ip
			LIMIT 1
			RETURN a._key
	`
	bindVars := map[string]interface{}{
		"hostname": hostname,
		"ip":       ipAddress,
	}

	cursor, err := db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return "", err
	}
	defer cursor.Close()

	if cursor.HasMore() {
		var key string
		_, err := cursor.ReadDocument(ctx, &key)
		if err != nil {
			return "", err
		}
		return key, nil
	}

	return "", nil
}

// FindVulnerabilityByCVE checks if a vulnerability exists by CVE identifier
func FindVulnerabilityByCVE(ctx context.Context, db arangodb.Database, cveID string) (string, error) {
	query := `
		FOR v IN vulnerability
			FILTER v.cve_id == @cve
			LIMIT 1
			RETURN v._key
	`
	bindVars := map[string]interface{}{
		"cve": cveID,
	}

	cursor, err := db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return "", err
	}
	defer cursor.Close()

	if cursor.HasMore() {
		var key string
		_, err := cursor.ReadDocument(ctx, &key)
		if err != nil {
			return "", err
		}
		return key, nil
	}

	return "", nil
}

// FindVulnerabilityByPlugin checks if a vulnerability exists by scanner plugin identity.
// Used for scan items that carry no CVE reference.
func FindVulnerabilityByPlugin(ctx context.Context, db arangodb.Database, scanner, pluginID string) (string, error) {
	query := `
		FOR v IN vulnerability
			FILTER v.scanner == @scanner
			   AND v.plugin_id == @plugin
			LIMIT 1
			RETURN v._key
	`
	bindVars := map[string]interface{}{
		"scanner": scanner,
		"plugin":  pluginID,
	}

	cursor, err := db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return "", err
	}
	defer cursor.Close()

	if cursor.HasMore() {
		var key string
		_, err := cursor.ReadDocument(ctx, &key)
		if err != nil {
			return "", err
		}
		return key, nil
	}

	return "", nil
}

// FindFindingByInstance checks if a finding exists for the given
// (asset, vulnerability, port, protocol) instance identity
func FindFindingByInstance(ctx context.Context, db arangodb.Database, assetKey, vulnerabilityKey string, port int, protocol string) (string, error) {
	query := `
		FOR f IN finding
			FILTER f.asset_key == @asset
			   AND f.vulnerability_key == @vuln
			   AND f.port == @port
			   AND f.protocol == @protocol
			LIMIT 1
			RETURN f._key
	`
	bindVars := map[string]interface{}{
		"asset":    assetKey,
		"vuln":     vulnerabilityKey,
		"port":     port,
		"protocol": protocol,
	}

	cursor, err := db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return "", err
	}
	defer cursor.Close()

	if cursor.HasMore() {
		var key string
		_, err := cursor.ReadDocument(ctx, &key)
		if err != nil {
			return "", err
		}
		return key, nil
	}

	return "", nil
}
