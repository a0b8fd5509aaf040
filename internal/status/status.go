// Package status implements the store's internal status-code taxonomy: a
// 32-bit code (high bit set means failure), an HTTP status, and a stable
// name string.
package status

import (
	"fmt"
	"net/http"
)

// Code is the store-wide status code. Equality is by value, matching the
// "equality by internal code" requirement for the status-code data model.
type Code uint32

const failureBit Code = 1 << 31

// Succeeded reports whether c has the high bit clear.
func (c Code) Succeeded() bool { return c&failureBit == 0 }

// Failed reports whether c has the high bit set.
func (c Code) Failed() bool { return !c.Succeeded() }

// String renders the registered stable name, or a hex fallback for unknown codes.
func (c Code) String() string {
	if e, ok := registry[c]; ok {
		return e.name
	}
	return fmt.Sprintf("status_0x%08x", uint32(c))
}

// Hex renders the code the way the HTTP surface serializes
// internal_status_code: a lowercase 0x-prefixed 32-bit hex string.
func (c Code) Hex() string { return fmt.Sprintf("0x%08x", uint32(c)) }

// HTTPStatus returns the HTTP status registered for c, defaulting to 500 for
// an unregistered failure code and 200 for an unregistered success code.
func (c Code) HTTPStatus() int {
	if e, ok := registry[c]; ok {
		return e.http
	}
	if c.Failed() {
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

type entry struct {
	name string
	http int
}

var registry = map[Code]entry{}

// register assigns a stable name and HTTP status to a code. Called only from
// this package's init to build the fixed taxonomy below.
func register(c Code, name string, httpStatus int) Code {
	if _, exists := registry[c]; exists {
		panic("status: duplicate registration for " + name)
	}
	registry[c] = entry{name: name, http: httpStatus}
	return c
}

// Success codes.
var (
	OK = register(0x00000000, "ok", http.StatusOK)
)

// Validation codes, all 400.
var (
	ContainerNameEmpty            = register(failureBit|0x0001, "container_name_empty", http.StatusBadRequest)
	ContainerNameExceedsSizeLimit = register(failureBit|0x0002, "container_name_exceeds_size_limit", http.StatusBadRequest)
	ObjectIDEmpty                 = register(failureBit|0x0003, "object_id_empty", http.StatusBadRequest)
	ObjectIDExceedsSizeLimit      = register(failureBit|0x0004, "object_id_exceeds_size_limit", http.StatusBadRequest)
	ObjectDataEmpty               = register(failureBit|0x0005, "object_data_empty", http.StatusBadRequest)
	ObjectDataExceedsSizeLimit    = register(failureBit|0x0006, "object_data_exceeds_size_limit", http.StatusBadRequest)
	RequestDecodeFailed           = register(failureBit|0x0007, "request_decode_failed", http.StatusBadRequest)
)

// Container state codes.
var (
	ContainerAlreadyExists     = register(failureBit|0x0101, "container_already_exists", http.StatusConflict)
	ContainerNotExists         = register(failureBit|0x0102, "container_not_exists", http.StatusNotFound)
	ContainerInDeletionProcess = register(failureBit|0x0103, "container_in_deletion_process", http.StatusConflict)
	MaxNumberContainersReached = register(failureBit|0x0104, "max_number_containers_reached", http.StatusTooManyRequests)
	InvalidOperation           = register(failureBit|0x0105, "invalid_operation", http.StatusBadRequest)
)

// Storage-engine codes, all 500.
var (
	StorageEngineStartupFailed           = register(failureBit|0x0201, "storage_engine_startup_failed", http.StatusInternalServerError)
	ObjectInsertionFailed                = register(failureBit|0x0202, "object_insertion_failed", http.StatusInternalServerError)
	ObjectRetrievalFailed                = register(failureBit|0x0203, "object_retrieval_failed", http.StatusInternalServerError)
	ObjectDeletionFailed                 = register(failureBit|0x0204, "object_deletion_failed", http.StatusInternalServerError)
	ContainerCreationFailed              = register(failureBit|0x0205, "container_creation_failed", http.StatusInternalServerError)
	ContainerStorageEngineDeletionFailed = register(failureBit|0x0206, "container_storage_engine_deletion_failed", http.StatusInternalServerError)
	StorageEngineReferenceCloseFailed    = register(failureBit|0x0207, "storage_engine_reference_close_failed", http.StatusInternalServerError)
	FetchContainersFromDiskFailed        = register(failureBit|0x0208, "fetch_containers_from_disk_failed", http.StatusInternalServerError)
	ObjectsRetrievalFromContainerFailed  = register(failureBit|0x0209, "objects_retrieval_from_container_failed", http.StatusInternalServerError)
)

// Serialization codes, all 500.
var (
	ParsingFailed       = register(failureBit|0x0301, "parsing_failed", http.StatusInternalServerError)
	SerializationFailed = register(failureBit|0x0302, "serialization_failed", http.StatusInternalServerError)
)

// Internal codes, all 500.
var (
	ContainersInternalMetadataLookupFailed = register(failureBit|0x0401, "containers_internal_metadata_lookup_failed", http.StatusInternalServerError)
	MissingStorageEngineReference           = register(failureBit|0x0402, "missing_storage_engine_reference", http.StatusInternalServerError)
	ContainerInsertionCollision             = register(failureBit|0x0403, "container_insertion_collision", http.StatusInternalServerError)
	Unreachable                             = register(failureBit|0x0404, "unreachable", http.StatusInternalServerError)
	ObjectDataSizeExceedsCacheLimit         = register(failureBit|0x0405, "object_data_size_exceeds_cache_limit", http.StatusInternalServerError)
	ObjectWriteBatchFailed                  = register(failureBit|0x0406, "object_write_batch_failed", http.StatusInternalServerError)
)

// Error adapts a Code to the error interface so it can travel through
// ordinary Go error-returning signatures while still carrying the taxonomy.
type Error struct {
	Code Code
	Err  error // optional wrapped cause, never part of Code equality
}

func New(c Code) *Error { return &Error{Code: c} }

func Wrap(c Code, err error) *Error { return &Error{Code: c, Err: err} }

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code.String()
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the Code carried by err, defaulting to Unreachable for any
// error that did not originate from this package.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	if se, ok := err.(*Error); ok {
		return se.Code
	}
	return Unreachable
}
