package testing

const groceries = `{"small":{"type":"list","items":[
	{"text":"Milk","checked":false,"action":"milk"},
	{"text":"Eggs","action":"eggs","payload":"12"}
]}}`

const link = `{"small":{"type":"link","url":"https://example.com/cart","children":[
	{"type":"text","content":"Open cart"}
]}}`
