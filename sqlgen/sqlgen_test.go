package sqlgen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlzgo/sqlz/expr"
	"github.com/sqlzgo/sqlz/schema"
	"github.com/sqlzgo/sqlz/sqlgen"
	"github.com/sqlzgo/sqlz/stmt"
)

func mustTable(t *testing.T, name string, cols ...*schema.Column) *schema.Table {
	t.Helper()
	tab, err := schema.NewTable(name, cols)
	require.NoError(t, err)
	return tab
}

func col(name string, typ schema.Type) *schema.Column {
	return &schema.Column{Name: name, Type: typ}
}

func personTable(t *testing.T) *schema.Table {
	return mustTable(t, "Person",
		&schema.Column{Name: "name", GoField: "Name", Type: schema.TypeText, PrimaryKey: true},
		&schema.Column{Name: "age", GoField: "Age", Type: schema.TypeInteger},
		&schema.Column{Name: "email", GoField: "Email", Type: schema.TypeText},
	)
}

func employeeTable(t *testing.T) *schema.Table {
	return mustTable(t, "Employee",
		col("id", schema.TypeInteger),
		col("name", schema.TypeText),
		col("dept_id", schema.TypeInteger),
		col("manager_id", schema.TypeInteger),
	)
}

func departmentTable(t *testing.T) *schema.Table {
	return mustTable(t, "Department",
		col("id", schema.TypeInteger),
		col("name", schema.TypeText),
	)
}

func projectTable(t *testing.T) *schema.Table {
	return mustTable(t, "Project",
		col("id", schema.TypeInteger),
		col("name", schema.TypeText),
		col("owner_id", schema.TypeInteger),
	)
}

func TestSelectWholeTable(t *testing.T) {
	person := personTable(t)

	q := stmt.Select(person).Where(expr.C(person, "age").Gt(25))
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)

	assert.Equal(t, "SELECT name, age, email FROM Person WHERE (age > ?)", c.SQL)
	assert.Equal(t, []any{int64(25)}, c.Args)
	assert.Empty(t, c.Warnings)
}

func TestClauseOrderIsFixed(t *testing.T) {
	person := personTable(t)

	// Builder call order must not leak into the rendered SQL.
	a := stmt.Select(expr.C(person, "name")).
		Where(expr.C(person, "age").Gt(25)).
		OrderBy(expr.C(person, "name")).
		Limit(3)
	b := stmt.Select(expr.C(person, "name")).
		Limit(3).
		OrderBy(expr.C(person, "name")).
		Where(expr.C(person, "age").Gt(25))

	ca, err := sqlgen.Compile(a)
	require.NoError(t, err)
	cb, err := sqlgen.Compile(b)
	require.NoError(t, err)

	assert.Equal(t, ca.SQL, cb.SQL)
	assert.Equal(t, "SELECT name FROM Person WHERE (age > ?) ORDER BY name LIMIT 3", ca.SQL)
}

func TestWhereCallsAccumulate(t *testing.T) {
	person := personTable(t)

	q := stmt.Select(person).
		Where(expr.C(person, "age").Gt(25)).
		Where(expr.C(person, "email").Like("%@example.com"))
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT name, age, email FROM Person WHERE (age > ?) AND (email LIKE ?)",
		c.SQL)
	assert.Equal(t, []any{int64(25), "%@example.com"}, c.Args)
}

func TestLimitOffset(t *testing.T) {
	person := personTable(t)

	q := stmt.Select(person).Limit(100).Limit(10).Offset(5)
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t, "SELECT name, age, email FROM Person LIMIT 10 OFFSET 5", c.SQL)
	assert.Empty(t, c.Args)

	_, err = sqlgen.Compile(stmt.Select(person).Offset(5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Offset without Limit")

	require.Error(t, stmt.Select(person).Limit(-1).Err())
}

func TestDistinct(t *testing.T) {
	person := personTable(t)

	c, err := sqlgen.Compile(stmt.Select(expr.C(person, "email")).Distinct())
	require.NoError(t, err)
	assert.Equal(t, "SELECT DISTINCT email FROM Person", c.SQL)
}

func TestProjectionAlias(t *testing.T) {
	person := personTable(t)

	q := stmt.Select(
		expr.C(person, "name").As("who"),
		expr.C(person, "age").Add(1).As("next_age"),
	)
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t, "SELECT name AS who, (age + ?) AS next_age FROM Person", c.SQL)
	assert.Equal(t, []any{int64(1)}, c.Args)
}

func TestAliasOutsideProjectionRendersName(t *testing.T) {
	employee := employeeTable(t)

	dept := expr.C(employee, "dept_id").As("d")
	q := stmt.Select(dept, expr.Count()).GroupBy(dept)
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t, "SELECT dept_id AS d, COUNT(*) FROM Employee GROUP BY d", c.SQL)
}

func TestInnerJoinQualifiesColumns(t *testing.T) {
	employee := employeeTable(t)
	department := departmentTable(t)

	q := stmt.Select(expr.C(employee, "name"), expr.C(department, "name")).
		Join(department, expr.C(employee, "dept_id").Eq(expr.C(department, "id")), stmt.Inner)
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT Employee.name, Department.name FROM Employee "+
			"INNER JOIN Department ON (Employee.dept_id = Department.id)",
		c.SQL)
}

func TestJoinKinds(t *testing.T) {
	employee := employeeTable(t)
	department := departmentTable(t)
	on := expr.C(employee, "dept_id").Eq(expr.C(department, "id"))

	for _, kind := range []stmt.JoinKind{stmt.Left, stmt.Right, stmt.Full} {
		q := stmt.Select(expr.C(employee, "name")).Join(department, on, kind)
		c, err := sqlgen.Compile(q)
		require.NoError(t, err)
		assert.Contains(t, c.SQL, string(kind)+" JOIN Department")
	}

	q := stmt.Select(expr.C(employee, "name")).Join(department, expr.Expr{}, stmt.Cross)
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t, "SELECT Employee.name FROM Employee CROSS JOIN Department", c.SQL)
}

func TestJoinValidation(t *testing.T) {
	employee := employeeTable(t)
	department := departmentTable(t)
	project := projectTable(t)

	// ON never mentions the joined table.
	q := stmt.Select(expr.C(employee, "name")).
		Join(project, expr.C(employee, "dept_id").Eq(expr.C(department, "id")), stmt.Inner)
	_, err := sqlgen.Compile(q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not reference Project")

	// ON mentions a table the statement never introduced.
	q = stmt.Select(expr.C(employee, "name")).
		Join(department, expr.C(project, "id").Eq(expr.C(department, "id")), stmt.Inner)
	_, err = sqlgen.Compile(q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unresolvable join")

	// ON only mentions the joined table.
	q = stmt.Select(expr.C(employee, "name")).
		Join(department, expr.C(department, "id").Gt(0), stmt.Inner)
	_, err = sqlgen.Compile(q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not tie Department")

	// Builder-level misuse.
	require.Error(t, stmt.Select(employee).Join(department, expr.Expr{}, stmt.Inner).Err())
	require.Error(t, stmt.Select(employee).
		Join(department, expr.C(department, "id").Gt(0), stmt.Cross).Err())
}

func TestSelfJoinThroughAlias(t *testing.T) {
	employee := employeeTable(t)
	manager := schema.Alias(employee, "m")

	q := stmt.Select(expr.C(employee, "name"), expr.C(manager, "name").As("manager")).
		Join(manager, expr.C(employee, "manager_id").Eq(expr.C(manager, "id")), stmt.Left)
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT Employee.name, m.name AS manager FROM Employee "+
			"LEFT JOIN Employee m ON (Employee.manager_id = m.id)",
		c.SQL)
}

func TestGroupByHaving(t *testing.T) {
	employee := employeeTable(t)

	q := stmt.Select(expr.C(employee, "dept_id"), expr.Count()).
		GroupBy(expr.C(employee, "dept_id")).
		Having(expr.Count().Gt(5))
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT dept_id, COUNT(*) FROM Employee GROUP BY dept_id HAVING (COUNT(*) > ?)",
		c.SQL)
	assert.Equal(t, []any{int64(5)}, c.Args)
}

func TestAggregateInWhereRejected(t *testing.T) {
	employee := employeeTable(t)

	q := stmt.Select(expr.C(employee, "dept_id")).Where(expr.Count().Gt(5))
	_, err := sqlgen.Compile(q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed in WHERE")
}

func TestAggregates(t *testing.T) {
	employee := employeeTable(t)

	q := stmt.Select(
		expr.Count(expr.C(employee, "id")),
		expr.Count(expr.C(employee, "dept_id")).Distinct(),
		expr.Sum(expr.C(employee, "id")),
		expr.Avg(expr.C(employee, "id")),
	)
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT COUNT(id), COUNT(DISTINCT dept_id), SUM(id), AVG(id) FROM Employee",
		c.SQL)
}

func TestScalarFunctions(t *testing.T) {
	person := personTable(t)

	q := stmt.Select(
		expr.Lower(expr.C(person, "name")),
		expr.Coalesce(expr.C(person, "email"), "none"),
		expr.Round(expr.C(person, "age"), 1),
		expr.Upper(expr.Concat(expr.C(person, "name"), "!")),
	)
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT LOWER(name), COALESCE(email, ?), ROUND(age, ?), UPPER((name || ?)) FROM Person",
		c.SQL)
	assert.Equal(t, []any{"none", int64(1), "!"}, c.Args)
}

func TestInValueList(t *testing.T) {
	person := personTable(t)

	q := stmt.Select(person).Where(expr.C(person, "name").In("alice", "bob"))
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT name, age, email FROM Person WHERE (name IN (?, ?))",
		c.SQL)
	assert.Equal(t, []any{"alice", "bob"}, c.Args)

	_, err = sqlgen.Compile(stmt.Select(person).Where(expr.C(person, "name").In()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty value list")
}

func TestInSubquery(t *testing.T) {
	employee := employeeTable(t)
	department := departmentTable(t)

	sub := stmt.Select(expr.C(department, "id")).Where(expr.C(department, "name").Eq("eng"))
	q := stmt.Select(expr.C(employee, "name")).Where(expr.C(employee, "dept_id").In(sub))
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT name FROM Employee WHERE (dept_id IN "+
			"(SELECT id FROM Department WHERE (name = ?)))",
		c.SQL)
	assert.Equal(t, []any{"eng"}, c.Args)
}

func TestCorrelatedExists(t *testing.T) {
	employee := employeeTable(t)
	project := projectTable(t)

	sub := stmt.Select(expr.C(project, "id")).
		Where(expr.C(project, "owner_id").Eq(expr.C(employee, "id")))
	q := stmt.Select(expr.C(employee, "name")).Where(expr.Exists(sub))
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT name FROM Employee WHERE EXISTS "+
			"(SELECT id FROM Project WHERE (owner_id = Employee.id))",
		c.SQL)
}

func TestScalarSubqueryInProjection(t *testing.T) {
	employee := employeeTable(t)
	project := projectTable(t)

	sub := stmt.Select(expr.Count()).From(project).
		Where(expr.C(project, "owner_id").Eq(expr.C(employee, "id")))
	q := stmt.Select(expr.C(employee, "name"), expr.Wrap(sub).As("projects"))
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT name, (SELECT COUNT(*) FROM Project WHERE (owner_id = Employee.id)) AS projects "+
			"FROM Employee",
		c.SQL)
}

func TestForeignColumnRejected(t *testing.T) {
	person := personTable(t)
	department := departmentTable(t)

	q := stmt.Select(expr.C(person, "name")).Where(expr.C(department, "id").Eq(1))
	_, err := sqlgen.Compile(q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not part of the statement")
}

func TestChainedComparisonRejected(t *testing.T) {
	person := personTable(t)

	q := stmt.Select(person).Where(expr.C(person, "age").Gt(18).Gt(65))
	_, err := sqlgen.Compile(q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chained comparison")
}

func TestUnknownColumnSurfacesAtCompile(t *testing.T) {
	person := personTable(t)

	q := stmt.Select(person).Where(expr.C(person, "nope").Eq(1))
	_, err := sqlgen.Compile(q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no column "nope"`)
}

func TestEmptyProjectionRejected(t *testing.T) {
	_, err := sqlgen.Compile(stmt.Select())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty projection")
}

func TestPredicateOperators(t *testing.T) {
	person := personTable(t)
	age := expr.C(person, "age")
	name := expr.C(person, "name")

	q := stmt.Select(name).Where(
		expr.Or(
			age.Between(18, 65),
			expr.And(name.NotLike("z%"), expr.C(person, "email").IsNull()),
			expr.Not(age.Eq(0)),
		),
	)
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT name FROM Person WHERE (((age BETWEEN ? AND ?) OR "+
			"((name NOT LIKE ?) AND (email IS NULL))) OR (NOT (age = ?)))",
		c.SQL)
	assert.Equal(t, []any{int64(18), int64(65), "z%", int64(0)}, c.Args)
}

func TestParamsFollowRenderOrder(t *testing.T) {
	person := personTable(t)
	age := expr.C(person, "age")

	q := stmt.Select(expr.C(person, "name")).
		Where(age.Eq(1).Or(age.Between(2, 3)))
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, c.Args)
}

func TestCompoundSelects(t *testing.T) {
	person := personTable(t)

	young := stmt.Select(expr.C(person, "name")).Where(expr.C(person, "age").Lt(30))
	old := stmt.Select(expr.C(person, "name")).Where(expr.C(person, "age").Gt(60))

	c, err := sqlgen.Compile(young.Union(old))
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT name FROM Person WHERE (age < ?) UNION SELECT name FROM Person WHERE (age > ?)",
		c.SQL)
	assert.Equal(t, []any{int64(30), int64(60)}, c.Args)

	c, err = sqlgen.Compile(young.UnionAll(old).Except(old).Intersect(young))
	require.NoError(t, err)
	assert.Contains(t, c.SQL, " UNION ALL ")
	assert.Contains(t, c.SQL, " EXCEPT ")
	assert.Contains(t, c.SQL, " INTERSECT ")
}

func TestOrderByDirections(t *testing.T) {
	person := personTable(t)

	q := stmt.Select(expr.C(person, "name")).
		OrderBy(expr.C(person, "age").Desc(), expr.C(person, "name"), expr.C(person, "email").Asc())
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t, "SELECT name FROM Person ORDER BY age DESC, name, email ASC", c.SQL)
}

func TestRawFragment(t *testing.T) {
	person := personTable(t)

	q := stmt.Select(expr.C(person, "name")).Where(expr.RawSQL("age % 2 = 0"))
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t, "SELECT name FROM Person WHERE age % 2 = 0", c.SQL)
	assert.Empty(t, c.Args)
}

func TestCTERendering(t *testing.T) {
	employee := employeeTable(t)

	counts := stmt.Select(
		expr.C(employee, "dept_id").As("d"),
		expr.Count().As("c"),
	).GroupBy(expr.C(employee, "dept_id"))
	cte := stmt.NewCTE("dept_counts", counts)
	ct := cte.Table()

	q := stmt.Select(expr.C(ct, "d"), expr.C(ct, "c")).From(ct).With(cte).
		Where(expr.C(ct, "c").Gt(10))
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)

	assert.Equal(t,
		"WITH dept_counts AS (SELECT dept_id AS d, COUNT(*) AS c FROM Employee GROUP BY dept_id) "+
			"SELECT d, c FROM dept_counts WHERE (c > ?)",
		c.SQL)
	assert.Equal(t, []any{int64(10)}, c.Args)
}

func TestCTEExplicitColumns(t *testing.T) {
	employee := employeeTable(t)

	body := stmt.Select(expr.C(employee, "dept_id"), expr.Count()).
		GroupBy(expr.C(employee, "dept_id"))
	cte := stmt.NewCTE("counts", body).Columns("dept", "total")
	ct := cte.Table()

	q := stmt.Select(cte.C("dept"), cte.C("total")).From(ct).With(cte)
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t,
		"WITH counts (dept, total) AS (SELECT dept_id, COUNT(*) FROM Employee GROUP BY dept_id) "+
			"SELECT dept, total FROM counts",
		c.SQL)
}

func TestCTEForwardReferenceReordered(t *testing.T) {
	employee := employeeTable(t)

	depts := stmt.NewCTE("depts", stmt.Select(expr.C(employee, "dept_id")))
	dt := depts.Table()
	roll := stmt.NewCTE("rollup", stmt.Select(expr.C(dt, "dept_id")).From(dt))
	rt := roll.Table()

	// rollup is attached before the CTE it references; emission must
	// still put depts first, since a WITH element may only reference
	// elements before it.
	q := stmt.Select(expr.C(rt, "dept_id")).From(rt).With(roll, depts)
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t,
		"WITH depts AS (SELECT dept_id FROM Employee), "+
			"rollup AS (SELECT dept_id FROM depts) "+
			"SELECT dept_id FROM rollup",
		c.SQL)
}

func TestCTESelfReferenceNeedsRecursive(t *testing.T) {
	self := schema.Ref("nums", "n")
	body := stmt.Select(expr.C(self, "n")).From(self)

	q := stmt.Select(expr.C(self, "n")).From(self).With(stmt.NewCTE("nums", body))
	_, err := sqlgen.Compile(q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "references itself")

	q = stmt.Select(expr.C(self, "n")).From(self).With(stmt.NewCTE("nums", body).Recursive())
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t, "WITH RECURSIVE nums AS (SELECT n FROM nums) SELECT n FROM nums", c.SQL)
}

func TestCTECycleRejected(t *testing.T) {
	aRef := schema.Ref("a", "x")
	bRef := schema.Ref("b", "x")

	aCTE := stmt.NewCTE("a", stmt.Select(expr.C(bRef, "x")).From(bRef))
	bCTE := stmt.NewCTE("b", stmt.Select(expr.C(aRef, "x")).From(aRef))

	q := stmt.Select(expr.C(aRef, "x")).From(aRef).With(aCTE, bCTE)
	_, err := sqlgen.Compile(q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestWindowFunctions(t *testing.T) {
	employee := employeeTable(t)

	rank := expr.RowNumber().Over(
		expr.NewWindow().
			PartitionBy(expr.C(employee, "dept_id")).
			OrderBy(expr.C(employee, "name").Desc()),
	)
	q := stmt.Select(expr.C(employee, "name"), rank.As("pos"))
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT name, ROW_NUMBER() OVER (PARTITION BY dept_id ORDER BY name DESC) AS pos FROM Employee",
		c.SQL)
}

func TestWindowFrame(t *testing.T) {
	employee := employeeTable(t)

	running := expr.Sum(expr.C(employee, "id")).Over(
		expr.NewWindow().
			OrderBy(expr.C(employee, "id")).
			Rows(expr.UnboundedPreceding(), expr.CurrentRow()),
	)
	c, err := sqlgen.Compile(stmt.Select(running))
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT SUM(id) OVER (ORDER BY id ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW) FROM Employee",
		c.SQL)
}

func TestBareRankingFunctionRejected(t *testing.T) {
	employee := employeeTable(t)

	_, err := sqlgen.Compile(stmt.Select(expr.C(employee, "name"), expr.RowNumber()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OVER")
}

func TestInsertValues(t *testing.T) {
	person := personTable(t)

	q := stmt.InsertInto(person).
		Values("alice", 30, "alice@example.com").
		Values("bob", 41, "bob@example.com")
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO Person (name, age, email) VALUES (?, ?, ?), (?, ?, ?)",
		c.SQL)
	assert.Equal(t,
		[]any{"alice", int64(30), "alice@example.com", "bob", int64(41), "bob@example.com"},
		c.Args)
}

type Person struct {
	Name  string
	Age   int64
	Email string
}

func TestInsertRecords(t *testing.T) {
	person := personTable(t)

	q := stmt.InsertInto(person).Records(
		Person{Name: "alice", Age: 30, Email: "alice@example.com"},
		&Person{Name: "bob", Age: 41, Email: "bob@example.com"},
	)
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO Person (name, age, email) VALUES (?, ?, ?), (?, ?, ?)",
		c.SQL)
	assert.Len(t, c.Args, 6)

	require.Error(t, stmt.InsertInto(person).Records(42).Err())
}

func TestInsertColumnSubset(t *testing.T) {
	person := personTable(t)

	q := stmt.InsertInto(person).Columns("name", "age").Values("carol", 7)
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO Person (name, age) VALUES (?, ?)", c.SQL)

	require.Error(t, stmt.InsertInto(person).Columns("nope").Err())
	require.Error(t, stmt.InsertInto(person).Values("too", "few").Err())
}

func TestInsertSkipsAutoIncrement(t *testing.T) {
	item := mustTable(t, "Item",
		&schema.Column{Name: "id", Type: schema.TypeInteger, PrimaryKey: true, AutoIncrement: true},
		col("label", schema.TypeText),
	)

	c, err := sqlgen.Compile(stmt.InsertInto(item).Values("widget"))
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO Item (label) VALUES (?)", c.SQL)
}

func TestInsertWithoutRowsRejected(t *testing.T) {
	person := personTable(t)

	_, err := sqlgen.Compile(stmt.InsertInto(person))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rows")
}

func TestInsertPolicies(t *testing.T) {
	person := personTable(t)

	c, err := sqlgen.Compile(stmt.InsertInto(person).OrReplace().Values("a", 1, "e"))
	require.NoError(t, err)
	assert.Equal(t, "INSERT OR REPLACE INTO Person (name, age, email) VALUES (?, ?, ?)", c.SQL)

	c, err = sqlgen.Compile(stmt.InsertInto(person).OrIgnore().Values("a", 1, "e"))
	require.NoError(t, err)
	assert.Equal(t, "INSERT OR IGNORE INTO Person (name, age, email) VALUES (?, ?, ?)", c.SQL)
}

func TestUpsert(t *testing.T) {
	person := personTable(t)
	excluded := schema.Excluded(person)

	q := stmt.InsertInto(person).
		Values("alice", 30, "alice@example.com").
		OnConflict(expr.C(person, "name")).
		DoUpdate(
			stmt.Assign(expr.C(person, "age"), expr.C(excluded, "age")),
			stmt.Assign(expr.C(person, "email"), expr.C(excluded, "email")),
		)
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO Person (name, age, email) VALUES (?, ?, ?) "+
			"ON CONFLICT (name) DO UPDATE SET age = excluded.age, email = excluded.email",
		c.SQL)
}

func TestUpsertDoNothing(t *testing.T) {
	person := personTable(t)

	q := stmt.InsertInto(person).
		Values("alice", 30, "alice@example.com").
		OnConflict(expr.C(person, "name")).
		DoNothing()
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Contains(t, c.SQL, "ON CONFLICT (name) DO NOTHING")

	require.Error(t, stmt.InsertInto(person).DoNothing().Err())

	// Target without an action is caught at compile time.
	_, err = sqlgen.Compile(stmt.InsertInto(person).
		Values("a", 1, "e").
		OnConflict(expr.C(person, "name")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ON CONFLICT without")
}

func TestUpdate(t *testing.T) {
	person := personTable(t)

	q := stmt.Update(person,
		stmt.Assign(expr.C(person, "age"), expr.C(person, "age").Add(1)),
		stmt.Assign(expr.C(person, "email"), "new@example.com"),
	).Where(expr.C(person, "name").Eq("alice"))
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE Person SET age = (age + ?), email = ? WHERE (name = ?)",
		c.SQL)
	assert.Equal(t, []any{int64(1), "new@example.com", "alice"}, c.Args)
	assert.Empty(t, c.Warnings)
}

func TestUpdateWithoutWhereWarns(t *testing.T) {
	person := personTable(t)

	c, err := sqlgen.Compile(stmt.Update(person, stmt.Assign(expr.C(person, "age"), 0)))
	require.NoError(t, err)
	assert.Equal(t, "UPDATE Person SET age = ?", c.SQL)
	require.Len(t, c.Warnings, 1)
	assert.Contains(t, c.Warnings[0], "every row")
}

func TestUpdateWithoutAssignmentsRejected(t *testing.T) {
	person := personTable(t)

	_, err := sqlgen.Compile(stmt.Update(person))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no assignments")
}

func TestDelete(t *testing.T) {
	person := personTable(t)

	q := stmt.DeleteFrom(person).Where(expr.C(person, "age").Lt(0))
	c, err := sqlgen.Compile(q)
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM Person WHERE (age < ?)", c.SQL)
	assert.Empty(t, c.Warnings)

	c, err = sqlgen.Compile(stmt.DeleteFrom(person))
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM Person", c.SQL)
	require.Len(t, c.Warnings, 1)
	assert.Contains(t, c.Warnings[0], "every row")
}

func TestCompileIsDeterministic(t *testing.T) {
	employee := employeeTable(t)
	department := departmentTable(t)

	q := stmt.Select(expr.C(employee, "name"), expr.C(department, "name")).
		Join(department, expr.C(employee, "dept_id").Eq(expr.C(department, "id")), stmt.Inner).
		Where(expr.C(employee, "name").Like("a%")).
		OrderBy(expr.C(employee, "name")).
		Limit(10)

	first, err := sqlgen.Compile(q)
	require.NoError(t, err)
	second, err := sqlgen.Compile(q)
	require.NoError(t, err)

	assert.Equal(t, first.SQL, second.SQL)
	assert.Equal(t, first.Args, second.Args)
}

func TestCompileNilDraft(t *testing.T) {
	_, err := sqlgen.Compile(nil)
	require.Error(t, err)
}
