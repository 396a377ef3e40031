package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecttracker/internal/database"
	"projecttracker/internal/domain"
	"projecttracker/internal/pkg/logger"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Connect("file:"+uuid.NewString()+"?mode=memory&cache=shared", logger.Discard())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewStore(db)
}

func insertOne(t *testing.T, s *Store, table Table, row Row) Row {
	t.Helper()
	rows, err := s.Insert(context.Background(), table, []Row{row})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return rows[0]
}

func TestStore_ClientRoundTrip(t *testing.T) {
	s := setupStore(t)
	in := domain.Client{
		Name:          "Acme",
		ContactPerson: "Jane Doe",
		Email:         "jane@acme.test",
		Phone:         "+1 555 0100",
		Location:      "Austin",
	}
	row, err := ClientToRow(in)
	require.NoError(t, err)

	stored := insertOne(t, s, TableClients, row)
	out := ClientFromRow(stored)
	assert.NotEmpty(t, out.ID)

	in.ID = out.ID
	assert.Equal(t, in, out)

	all, err := s.FetchAll(context.Background(), TableClients)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, in, ClientFromRow(all[0]))
}

func TestStore_FetchAllKeepsInsertOrder(t *testing.T) {
	s := setupStore(t)
	rows := make([]Row, 0, 5)
	for _, name := range []string{"e", "d", "c", "b", "a"} {
		r, err := ClientToRow(domain.Client{Name: name})
		require.NoError(t, err)
		rows = append(rows, r)
	}
	_, err := s.Insert(context.Background(), TableClients, rows)
	require.NoError(t, err)

	all, err := s.FetchAll(context.Background(), TableClients)
	require.NoError(t, err)
	var names []string
	for _, r := range all {
		names = append(names, ClientFromRow(r).Name)
	}
	assert.Equal(t, []string{"e", "d", "c", "b", "a"}, names)
}

func TestStore_SupplierListsAndPurchaseOrderAmount(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	supRow, err := SupplierToRow(domain.Supplier{
		Name:             "Steelworks",
		Rating:           4.5,
		OnTimeDelivery:   92,
		PositiveComments: []string{"fast", "cheap"},
	})
	require.NoError(t, err)
	sup := SupplierFromRow(insertOne(t, s, TableSuppliers, supRow))
	assert.Equal(t, []string{"fast", "cheap"}, sup.PositiveComments)
	assert.Equal(t, []string{}, sup.NegativeComments)
	assert.InDelta(t, 4.5, sup.Rating, 0.0001)

	cli := ClientFromRow(insertOne(t, s, TableClients, Row{"name": "Acme"}))
	prjRow, err := ProjectToRow(domain.Project{Name: "Tower", ClientID: cli.ID})
	require.NoError(t, err)
	prj := ProjectFromRow(insertOne(t, s, TableProjects, prjRow))
	assert.Equal(t, domain.ProjectPending, prj.Status)

	amount := decimal.RequireFromString("1250.50")
	poRow, err := PurchaseOrderToRow(domain.PurchaseOrder{
		PONumber:   "PO-1",
		ProjectID:  prj.ID,
		SupplierID: sup.ID,
		Amount:     &amount,
	})
	require.NoError(t, err)
	po := PurchaseOrderFromRow(insertOne(t, s, TablePurchaseOrders, poRow), nil)
	require.NotNil(t, po.Amount)
	assert.True(t, amount.Equal(*po.Amount))
	assert.Nil(t, po.Progress)
	assert.Equal(t, domain.POActive, po.Status)
	assert.Equal(t, []domain.Part{}, po.Parts)

	_, err = s.FetchAll(ctx, TablePurchaseOrders)
	require.NoError(t, err)
}

func TestStore_UpdateAndDeleteReportRowsAffected(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	c := ClientFromRow(insertOne(t, s, TableClients, Row{"name": "Acme"}))

	patch, err := ClientPatchRow(domain.ClientPatch{Location: domain.Ptr("Denver")})
	require.NoError(t, err)
	assert.Equal(t, Row{"location": "Denver"}, patch)

	n, err := s.Update(ctx, TableClients, ByID(c.ID), patch)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.Update(ctx, TableClients, ByID("missing"), patch)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	all, err := s.FetchAll(ctx, TableClients)
	require.NoError(t, err)
	assert.Equal(t, "Denver", ClientFromRow(all[0]).Location)
	assert.Equal(t, "Acme", ClientFromRow(all[0]).Name)

	n, err = s.Delete(ctx, TableClients, ByID(c.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.Delete(ctx, TableClients, ByID(c.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestStore_ForeignKeyViolation(t *testing.T) {
	s := setupStore(t)
	row, err := ProjectToRow(domain.Project{Name: "Orphan", ClientID: "nope"})
	require.NoError(t, err)

	_, err = s.Insert(context.Background(), TableProjects, []Row{row})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStore))

	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, KindForeignKey, se.Kind)
	assert.Equal(t, TableProjects, se.Table)
}

func TestStore_UnknownTable(t *testing.T) {
	s := setupStore(t)
	_, err := s.FetchAll(context.Background(), Table("widgets"))
	assert.ErrorIs(t, err, ErrUnknownTable)

	_, err = s.Delete(context.Background(), TableClients, Filter{Column: "drop table", Value: 1})
	assert.Error(t, err)
}

func TestStore_InsertWithChildren(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	cli := ClientFromRow(insertOne(t, s, TableClients, Row{"name": "Acme"}))
	sup := SupplierFromRow(insertOne(t, s, TableSuppliers, Row{"name": "Steel"}))
	prj := ProjectFromRow(insertOne(t, s, TableProjects, Row{"name": "Tower", "client_id": cli.ID}))

	poRow, err := PurchaseOrderToRow(domain.PurchaseOrder{PONumber: "PO-9", ProjectID: prj.ID, SupplierID: sup.ID})
	require.NoError(t, err)
	partA, err := PartToRow("", domain.Part{ID: domain.NewPartID(), Name: "Bolt", Quantity: 10, Progress: domain.Ptr(30)})
	require.NoError(t, err)
	partB, err := PartToRow("", domain.Part{Name: "Nut", Quantity: 20, Progress: domain.Ptr(70)})
	require.NoError(t, err)

	po, parts, err := s.InsertWithChildren(ctx, TablePurchaseOrders, poRow, TableParts, "purchase_order_id", []Row{partA, partB})
	require.NoError(t, err)
	require.Len(t, parts, 2)

	poRows, err := s.FetchAll(ctx, TablePurchaseOrders)
	require.NoError(t, err)
	partRows, err := s.FetchAll(ctx, TableParts)
	require.NoError(t, err)
	orders := AssemblePurchaseOrders(poRows, partRows)
	require.Len(t, orders, 1)
	assert.Equal(t, asString(po["id"]), orders[0].ID)
	require.Len(t, orders[0].Parts, 2)
	assert.Equal(t, "Bolt", orders[0].Parts[0].Name)
	assert.False(t, domain.IsUnsavedPartID(orders[0].Parts[0].ID))
	assert.Equal(t, 70, orders[0].Parts[1].ProgressOrZero())
}

func TestStore_InsertWithChildrenRollsBack(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	cli := ClientFromRow(insertOne(t, s, TableClients, Row{"name": "Acme"}))
	sup := SupplierFromRow(insertOne(t, s, TableSuppliers, Row{"name": "Steel"}))
	prj := ProjectFromRow(insertOne(t, s, TableProjects, Row{"name": "Tower", "client_id": cli.ID}))

	poRow, err := PurchaseOrderToRow(domain.PurchaseOrder{PONumber: "PO-9", ProjectID: prj.ID, SupplierID: sup.ID})
	require.NoError(t, err)
	bad := Row{"quantity": 3}

	_, _, err = s.InsertWithChildren(ctx, TablePurchaseOrders, poRow, TableParts, "purchase_order_id", []Row{bad})
	require.Error(t, err)

	poRows, err := s.FetchAll(ctx, TablePurchaseOrders)
	require.NoError(t, err)
	assert.Empty(t, poRows)
}

func TestStore_Truncate(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	cli := ClientFromRow(insertOne(t, s, TableClients, Row{"name": "Acme"}))
	insertOne(t, s, TableProjects, Row{"name": "Tower", "client_id": cli.ID})

	require.NoError(t, s.Truncate(ctx))
	for _, table := range AllTables {
		rows, err := s.FetchAll(ctx, table)
		require.NoError(t, err)
		assert.Empty(t, rows, table)
	}
}

func TestStore_ShipmentLists(t *testing.T) {
	s := setupStore(t)
	cli := ClientFromRow(insertOne(t, s, TableClients, Row{"name": "Acme"}))
	sup := SupplierFromRow(insertOne(t, s, TableSuppliers, Row{"name": "Steel"}))
	prj := ProjectFromRow(insertOne(t, s, TableProjects, Row{"name": "Tower", "client_id": cli.ID}))

	row, err := ShipmentToRow(domain.Shipment{
		Type:             domain.ShipmentOcean,
		ProjectID:        prj.ID,
		SupplierID:       sup.ID,
		PurchaseOrderIDs: []string{"po-a", "po-b"},
		ContainerNumber:  "MSCU1234567",
	})
	require.NoError(t, err)
	sh := ShipmentFromRow(insertOne(t, s, TableShipments, row))
	assert.Equal(t, []string{"po-a", "po-b"}, sh.PurchaseOrderIDs)
	assert.Nil(t, sh.PartIDs)
	assert.Equal(t, "MSCU1234567", sh.ContainerNumber)
}
