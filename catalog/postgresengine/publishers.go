package postgresengine

import (
	"github.com/doug-martin/goqu/v9"

	"github.com/BilyiPJATK/librarystore/catalog"
)

const tablePublishers = "publishers"

var publisherTable = tableSpec[catalog.Publisher]{
	table:   tablePublishers,
	columns: []string{colName, colAddress, colPhoneNumber},
	record: func(publisher catalog.Publisher) goqu.Record {
		return goqu.Record{
			colName:        publisher.Name,
			colAddress:     publisher.Address,
			colPhoneNumber: publisher.PhoneNumber,
		}
	},
	scan: func(row rowScanner) (catalog.Publisher, error) {
		var publisher catalog.Publisher
		err := row.Scan(&publisher.ID, &publisher.Name, &publisher.Address, &publisher.PhoneNumber)

		return publisher, err
	},
	id:    func(publisher catalog.Publisher) int64 { return publisher.ID },
	setID: func(publisher *catalog.Publisher, id int64) { publisher.ID = id },
}

// PublisherRepository provides CRUD for publisher records.
type PublisherRepository struct {
	repository[catalog.Publisher]
}
