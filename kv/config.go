// Copyright 2024 The sonlib-go Authors
// This file is part of sonlib-go.
//
// sonlib-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// sonlib-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with sonlib-go. If not, see <http://www.gnu.org/licenses/>.

package kv

import (
	"encoding/json"
	"encoding/xml"

	"github.com/benedictpaten/sonlib-go/sonerr"
)

// BackendType names one of the concrete backends spec §4.5 requires.
type BackendType string

const (
	BackendEmbeddedBTree BackendType = "tokyo_cabinet"
	BackendRemoteCache   BackendType = "kyoto_tycoon"
	BackendRelational    BackendType = "mysql"
)

// Config carries the backend name and every connection parameter it might
// need, per spec §4.5/§6. Fields not relevant to Type are simply left zero.
type Config struct {
	Type BackendType

	// tokyo_cabinet / opaque big-record file backend
	DatabaseDir string

	// kyoto_tycoon
	Host               string
	Port               int
	TimeoutSeconds     int
	DatabaseName       string
	MaxRecordSize      int64
	MaxBulkSetSize     int64
	MaxBulkSetNumRecords int

	// mysql
	User      string
	Password  string
	TableName string
}

// xmlConfig mirrors spec §6's XML shape:
//
//	<st_kv_database_conf type="kyoto_tycoon">
//	  <kyoto_tycoon host="..." port="..." .../>
//	</st_kv_database_conf>
type xmlConfig struct {
	XMLName xml.Name `xml:"st_kv_database_conf"`
	Type    string   `xml:"type,attr"`
	TC      *xmlTC   `xml:"tokyo_cabinet"`
	KT      *xmlKT   `xml:"kyoto_tycoon"`
	MySQL   *xmlSQL  `xml:"mysql"`
}

type xmlTC struct {
	DatabaseDir string `xml:"database_dir,attr"`
}

type xmlKT struct {
	Host                 string `xml:"host,attr"`
	Port                 int    `xml:"port,attr"`
	Timeout              int    `xml:"timeout,attr"`
	DatabaseDir          string `xml:"database_dir,attr"`
	DatabaseName         string `xml:"database_name,attr"`
	MaxRecordSize        int64  `xml:"max_record_size,attr"`
	MaxBulkSetSize       int64  `xml:"max_bulk_set_size,attr"`
	MaxBulkSetNumRecords int    `xml:"max_bulk_set_num_records,attr"`
}

type xmlSQL struct {
	Host         string `xml:"host,attr"`
	Port         int    `xml:"port,attr"`
	User         string `xml:"user,attr"`
	Password     string `xml:"password,attr"`
	DatabaseName string `xml:"database_name,attr"`
	TableName    string `xml:"table_name,attr"`
}

// ParseConfigXML parses the XML-shaped configuration document of spec §6.
// Unknown attributes are ignored; a missing element for the declared type,
// or a missing required attribute, fails with CONFIG_INVALID.
func ParseConfigXML(data []byte) (*Config, error) {
	var doc xmlConfig
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, sonerr.Wrap(sonerr.KindConfigInvalid, err, "ParseConfigXML: malformed XML")
	}
	return configFromXML(&doc)
}

func configFromXML(doc *xmlConfig) (*Config, error) {
	switch BackendType(doc.Type) {
	case BackendEmbeddedBTree:
		if doc.TC == nil {
			return nil, sonerr.New(sonerr.KindConfigInvalid, "missing <tokyo_cabinet> element")
		}
		if doc.TC.DatabaseDir == "" {
			return nil, sonerr.New(sonerr.KindConfigInvalid, "tokyo_cabinet requires database_dir")
		}
		return &Config{Type: BackendEmbeddedBTree, DatabaseDir: doc.TC.DatabaseDir}, nil
	case BackendRemoteCache:
		if doc.KT == nil {
			return nil, sonerr.New(sonerr.KindConfigInvalid, "missing <kyoto_tycoon> element")
		}
		if doc.KT.Host == "" || doc.KT.Port == 0 {
			return nil, sonerr.New(sonerr.KindConfigInvalid, "kyoto_tycoon requires host and port")
		}
		return &Config{
			Type:                 BackendRemoteCache,
			Host:                 doc.KT.Host,
			Port:                 doc.KT.Port,
			TimeoutSeconds:       doc.KT.Timeout,
			DatabaseDir:          doc.KT.DatabaseDir,
			DatabaseName:         doc.KT.DatabaseName,
			MaxRecordSize:        doc.KT.MaxRecordSize,
			MaxBulkSetSize:       doc.KT.MaxBulkSetSize,
			MaxBulkSetNumRecords: doc.KT.MaxBulkSetNumRecords,
		}, nil
	case BackendRelational:
		if doc.MySQL == nil {
			return nil, sonerr.New(sonerr.KindConfigInvalid, "missing <mysql> element")
		}
		if doc.MySQL.Host == "" || doc.MySQL.DatabaseName == "" || doc.MySQL.TableName == "" {
			return nil, sonerr.New(sonerr.KindConfigInvalid, "mysql requires host, database_name and table_name")
		}
		return &Config{
			Type:         BackendRelational,
			Host:         doc.MySQL.Host,
			Port:         doc.MySQL.Port,
			User:         doc.MySQL.User,
			Password:     doc.MySQL.Password,
			DatabaseName: doc.MySQL.DatabaseName,
			TableName:    doc.MySQL.TableName,
		}, nil
	default:
		return nil, sonerr.Newf(sonerr.KindConfigInvalid, "unknown backend type %q", doc.Type)
	}
}

// jsonConfig is the JSON-shaped config document supplemented from
// original_source/C/inc/stJson.h (see SPEC_FULL.md §C.6): the same fields
// as xmlConfig, flattened.
type jsonConfig struct {
	Type                 string `json:"type"`
	Host                 string `json:"host,omitempty"`
	Port                 int    `json:"port,omitempty"`
	Timeout              int    `json:"timeout,omitempty"`
	DatabaseDir          string `json:"database_dir,omitempty"`
	DatabaseName         string `json:"database_name,omitempty"`
	TableName            string `json:"table_name,omitempty"`
	User                 string `json:"user,omitempty"`
	Password             string `json:"password,omitempty"`
	MaxRecordSize        int64  `json:"max_record_size,omitempty"`
	MaxBulkSetSize       int64  `json:"max_bulk_set_size,omitempty"`
	MaxBulkSetNumRecords int    `json:"max_bulk_set_num_records,omitempty"`
}

// ParseConfigJSON parses the JSON-shaped config document alternative to
// ParseConfigXML.
func ParseConfigJSON(data []byte) (*Config, error) {
	var doc jsonConfig
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, sonerr.Wrap(sonerr.KindConfigInvalid, err, "ParseConfigJSON: malformed JSON")
	}
	switch BackendType(doc.Type) {
	case BackendEmbeddedBTree:
		if doc.DatabaseDir == "" {
			return nil, sonerr.New(sonerr.KindConfigInvalid, "tokyo_cabinet requires database_dir")
		}
		return &Config{Type: BackendEmbeddedBTree, DatabaseDir: doc.DatabaseDir}, nil
	case BackendRemoteCache:
		if doc.Host == "" || doc.Port == 0 {
			return nil, sonerr.New(sonerr.KindConfigInvalid, "kyoto_tycoon requires host and port")
		}
		return &Config{
			Type: BackendRemoteCache, Host: doc.Host, Port: doc.Port, TimeoutSeconds: doc.Timeout,
			DatabaseDir: doc.DatabaseDir, DatabaseName: doc.DatabaseName,
			MaxRecordSize: doc.MaxRecordSize, MaxBulkSetSize: doc.MaxBulkSetSize,
			MaxBulkSetNumRecords: doc.MaxBulkSetNumRecords,
		}, nil
	case BackendRelational:
		if doc.Host == "" || doc.DatabaseName == "" || doc.TableName == "" {
			return nil, sonerr.New(sonerr.KindConfigInvalid, "mysql requires host, database_name and table_name")
		}
		return &Config{
			Type: BackendRelational, Host: doc.Host, Port: doc.Port, User: doc.User,
			Password: doc.Password, DatabaseName: doc.DatabaseName, TableName: doc.TableName,
		}, nil
	default:
		return nil, sonerr.Newf(sonerr.KindConfigInvalid, "unknown backend type %q", doc.Type)
	}
}
