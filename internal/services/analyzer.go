package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/heraerp/hera-dev-sub007/internal/logger"
	"github.com/heraerp/hera-dev-sub007/internal/types"
)

// sampleRecordCap bounds the raw records retained per entity for preview.
const sampleRecordCap = 5

// StructuralAnalyzerService infers the entity/field structure of unknown
// legacy data. Field types are inferred exactly once here and carried
// immutably afterwards. Nested values are typed json and not decomposed
// further; analysis is flat, one level only.
type StructuralAnalyzerService interface {
	AnalyzeJSON(sourceName string, raw []byte) ([]types.LegacyEntity, error)
	AnalyzeCSV(sourceName string, raw []byte) ([]types.LegacyEntity, error)
}

type structuralAnalyzerService struct {
	log        *logger.Logger
	classifier DomainClassifierService
}

func NewStructuralAnalyzerService(baseLog *logger.Logger, classifier DomainClassifierService) StructuralAnalyzerService {
	return &structuralAnalyzerService{
		log:        baseLog.With("service", "StructuralAnalyzerService"),
		classifier: classifier,
	}
}

func (s *structuralAnalyzerService) AnalyzeJSON(sourceName string, raw []byte) ([]types.LegacyEntity, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ParseError{Source: sourceName, Err: err}
	}

	switch content := parsed.(type) {
	case []any:
		records, err := coerceRecords(content)
		if err != nil {
			return nil, &ParseError{Source: sourceName, Err: err}
		}
		if len(records) == 0 {
			return []types.LegacyEntity{}, nil
		}
		entity := s.analyzeRecords(sourceName, records)
		return []types.LegacyEntity{entity}, nil

	case map[string]any:
		// One entity per top-level key whose value is a non-empty array.
		// Keys are visited in sorted order so repeated analysis of the same
		// payload yields identical output.
		keys := make([]string, 0, len(content))
		for k := range content {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		entities := []types.LegacyEntity{}
		for _, key := range keys {
			arr, ok := content[key].([]any)
			if !ok || len(arr) == 0 {
				continue
			}
			records, err := coerceRecords(arr)
			if err != nil {
				return nil, &ParseError{Source: sourceName, Err: fmt.Errorf("key %q: %w", key, err)}
			}
			if len(records) == 0 {
				continue
			}
			entities = append(entities, s.analyzeRecords(key, records))
		}
		return entities, nil

	default:
		return nil, &ParseError{Source: sourceName, Err: fmt.Errorf("expected a JSON array or object of arrays")}
	}
}

func (s *structuralAnalyzerService) AnalyzeCSV(sourceName string, raw []byte) ([]types.LegacyEntity, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &ParseError{Source: sourceName, Err: err}
	}
	if len(rows) == 0 {
		return nil, &ParseError{Source: sourceName, Err: fmt.Errorf("csv has no header row")}
	}
	header := rows[0]
	if len(rows) == 1 {
		return []types.LegacyEntity{}, nil
	}

	records := make([]map[string]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(row) && row[i] != "" {
				record[col] = row[i]
			}
		}
		records = append(records, record)
	}
	entity := s.analyzeRecordsOrdered(sourceName, header, records)
	return []types.LegacyEntity{entity}, nil
}

// analyzeRecords discovers fields from the first record. JSON objects carry
// no stable key order in Go, so field names are sorted for determinism.
func (s *structuralAnalyzerService) analyzeRecords(name string, records []map[string]any) types.LegacyEntity {
	first := records[0]
	fieldNames := make([]string, 0, len(first))
	for k := range first {
		fieldNames = append(fieldNames, k)
	}
	sort.Strings(fieldNames)
	return s.analyzeRecordsOrdered(name, fieldNames, records)
}

func (s *structuralAnalyzerService) analyzeRecordsOrdered(name string, fieldNames []string, records []map[string]any) types.LegacyEntity {
	fields := make([]types.LegacyField, 0, len(fieldNames))
	for _, fieldName := range fieldNames {
		sample := records[0][fieldName]
		fields = append(fields, types.LegacyField{
			Name:        fieldName,
			Type:        inferFieldType(sample),
			SampleValue: sample,
			IsRequired:  fieldRequired(fieldName, records),
		})
	}

	sampleData := records
	if len(sampleData) > sampleRecordCap {
		sampleData = sampleData[:sampleRecordCap]
	}

	// Zero confidence means unclassified; the tie-break name the classifier
	// returns in that case must not be persisted as the entity type.
	classification := s.classifier.Classify(name)
	entityType := classification.Name
	if classification.Confidence == 0 {
		entityType = GeneralDomain().Name
	}
	s.log.Debug("Analyzed entity", "entity", name, "fields", len(fields), "records", len(records), "domain", entityType)

	return types.LegacyEntity{
		Name:       name,
		Type:       entityType,
		Fields:     fields,
		SampleData: sampleData,
	}
}

func coerceRecords(arr []any) ([]map[string]any, error) {
	records := make([]map[string]any, 0, len(arr))
	for i, item := range arr {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d is not an object", i)
		}
		records = append(records, record)
	}
	return records, nil
}

// fieldRequired is true iff the field is present and non-null across every
// record in the full dataset, not just the retained sample.
func fieldRequired(fieldName string, records []map[string]any) bool {
	for _, record := range records {
		v, ok := record[fieldName]
		if !ok || v == nil {
			return false
		}
	}
	return true
}

var (
	isoDateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	slashDateRe = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`)
)

func inferFieldType(v any) types.FieldType {
	switch val := v.(type) {
	case bool:
		return types.FieldTypeBoolean
	case float64:
		return types.FieldTypeNumber
	case int, int64:
		return types.FieldTypeNumber
	case map[string]any, []any:
		return types.FieldTypeJSON
	case string:
		if isoDateRe.MatchString(val) || slashDateRe.MatchString(val) {
			return types.FieldTypeDate
		}
		if val != "" {
			if _, err := strconv.ParseFloat(val, 64); err == nil {
				return types.FieldTypeNumber
			}
		}
		return types.FieldTypeText
	default:
		return types.FieldTypeText
	}
}
